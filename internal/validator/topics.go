package validator

import (
	"fmt"
	"math/rand/v2"

	"github.com/tensorplex-labs/eden/internal/synapse"
)

const promptTemplate = "please write a short alegory about the following topic: %s"

var defaultTopics = []string{
	"the tide that forgot the moon",
	"a lighthouse keeper who never sleeps",
	"two rivers arguing about the sea",
	"a clock that runs backwards",
	"the last seed in a frozen vault",
	"a city built on the back of a whale",
	"the mountain that wanted to fly",
	"a library where books rewrite themselves",
	"the baker who sold sunlight",
	"an orchard that grows only questions",
	"the bridge between two quarrelling villages",
	"a compass that points to regret",
	"the shepherd of lost echoes",
	"a fox who counted the stars",
	"the well that answered in riddles",
	"a lantern carried through a drought",
	"the ferryman and the unpaid coin",
	"a garden tended by strangers",
	"the crow who inherited a kingdom",
	"a map with one road missing",
	"the weaver of fog",
	"a bell that rings only for liars",
	"the island that drifted away at night",
	"an ant colony voting for a queen",
	"the potter and the cracked vessel",
	"a storm that apologised",
	"the miner who found a second sun",
	"a mirror that showed tomorrow",
	"the tortoise who carried the library",
	"a candle burning at both ends",
	"the ledger of every kept promise",
	"a forest that walked to the ocean",
	"the merchant of borrowed time",
	"a kite tethered to a mountain",
	"the cartographer of dreams",
	"a chorus of rusted gears",
	"the glacier that remembered summer",
	"a key that opened only empty rooms",
	"the market where silence was sold",
	"a seed planted in a stone",
}

// sampleTopic draws one topic uniformly from topics.
func sampleTopic(topics []string) string {
	return topics[rand.IntN(len(topics))]
}

func buildPrompt(topic string) []synapse.Message {
	return []synapse.Message{{
		Role:    synapse.RoleUser,
		Content: fmt.Sprintf(promptTemplate, topic),
	}}
}
