package classify

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// CreateCapability creates a classifier capability based on environment
// configuration. It is called once at startup; the resulting capability is
// shared by all requests (the underlying model is loaded once, never
// reloaded per request).
func CreateCapability() (Capability, error) {
	providerName := strings.ToLower(os.Getenv("CLASSIFIER_PROVIDER"))

	// Default to the self-hosted model server if not specified
	if providerName == "" {
		providerName = "roberta"
		log.Printf("[Classifier Factory] CLASSIFIER_PROVIDER not set, defaulting to 'roberta'")
	}

	switch providerName {
	case "roberta":
		log.Printf("[Classifier Factory] Creating model-server classifier")
		return NewRobertaCapability(os.Getenv("MODEL_SERVER_URL"))
	case "openai":
		log.Printf("[Classifier Factory] Creating OpenAI classifier")
		return NewOpenAICapability(os.Getenv("OPENAI_API_KEY"))
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s. Supported: roberta, openai", providerName)
	}
}
