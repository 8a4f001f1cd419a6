package embedding

// Service pairs an Encoder with Similarity.
type Service struct {
	encoder Encoder
}

func NewService(encoder Encoder) *Service {
	return &Service{encoder: encoder}
}

func (s *Service) Encode(text string) []int {
	return s.encoder.Encode(text)
}

func (s *Service) Similarity(a, b []int) float64 {
	return Similarity(a, b)
}
