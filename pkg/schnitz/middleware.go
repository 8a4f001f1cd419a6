package schnitz

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/pkg/signature"
)

// ZstdMiddleware decompresses zstd request bodies and compresses responses
// for clients that accept zstd.
func ZstdMiddleware(whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "zstd") {
			if body := c.Body(); len(body) > 0 {
				decompressed, err := decodeZstd(body)
				if err != nil {
					log.Err(err).Msg("Failed to decompress request")
					return c.Status(fiber.StatusBadRequest).JSON(
						createResponse(map[string]any{}, fmt.Errorf("failed to decompress zstd data: %w", err)))
				}
				c.Request().SetBody(decompressed)
				c.Request().Header.Del(fiber.HeaderContentEncoding)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderAcceptEncoding)), "zstd") {
			return nil
		}
		responseBody := c.Response().Body()
		if len(responseBody) == 0 {
			return nil
		}

		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			log.Err(err).Msg("Failed to create zstd encoder")
			return nil
		}
		defer encoder.Close()

		compressed := encoder.EncodeAll(responseBody, nil)
		c.Response().SetBody(compressed)
		c.Set(fiber.HeaderContentEncoding, "zstd")
		c.Set(fiber.HeaderContentLength, strconv.Itoa(len(compressed)))

		log.Trace().
			Int("original_size", len(responseBody)).
			Int("compressed_size", len(compressed)).
			Msg("Response body compressed")
		return nil
	}
}

func decodeZstd(body []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return io.ReadAll(decoder)
}

// SignatureMiddleware rejects requests whose x-signature does not verify
// x-message against the x-hotkey address.
func SignatureMiddleware(signatureVerifier signature.SignatureVerifier, whitelistedRoutes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isWhitelisted(c.Path(), whitelistedRoutes) {
			return c.Next()
		}

		sig := c.Get(SignatureHeader)
		hotkey := c.Get(HotkeyHeader)
		message := c.Get(MessageHeader)

		if hotkey == "" || sig == "" || message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(map[string]any{},
				fmt.Errorf("%s, missing headers, expected: %s, %s, %s",
					http.StatusText(http.StatusBadRequest), SignatureHeader, HotkeyHeader, MessageHeader)))
		}

		valid, err := signatureVerifier.Verify(message, sig, hotkey)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(createResponse(map[string]any{},
				fmt.Errorf("signature verification error: %w", err)))
		}
		if !valid {
			return c.Status(fiber.StatusForbidden).JSON(createResponse(map[string]any{},
				fmt.Errorf("%s due to invalid signature", http.StatusText(http.StatusForbidden))))
		}

		log.Debug().Str("hotkey", hotkey).Str("path", c.Path()).Msg("Verified signature")
		return c.Next()
	}
}
