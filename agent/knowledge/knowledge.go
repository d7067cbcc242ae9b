package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// Entry is one question/answer pair the agent may quote from.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Base is the FAQ injected into the system prompt.
type Base []Entry

var DefaultFAQ = Base{
	{
		Question: "What does Jaysid Development do?",
		Answer:   "We are a premier software house specializing in Custom AI Agents, Full-Stack Web Development, and Cloud Migration services.",
	},
	{
		Question: "How much does a custom AI agent cost?",
		Answer:   "Our pilot packages start at $2,500 for a basic RAG chatbot. Enterprise voice agents typically range from $10k to $25k depending on integration complexity.",
	},
	{
		Question: "What tech stack do you use?",
		Answer:   "We specialize in Python, TypeScript, React, Next.js, and cloud providers like AWS and Google Cloud. For AI, we use OpenAI, Anthropic, and LiveKit.",
	},
	{
		Question: "Do you offer staff augmentation?",
		Answer:   "Yes, we can provide dedicated senior developers to join your existing team on a contract basis.",
	},
}

const faqSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question", "answer"],
    "properties": {
      "question": {"type": "string", "minLength": 1},
      "answer": {"type": "string", "minLength": 1}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(faqSchema)

// LoadOrInit reads the knowledge base at path, seeding it with DefaultFAQ when
// the file does not exist yet.
func LoadOrInit(path string) (Base, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrInvalidKnowledgeBase)
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Int("entries", len(DefaultFAQ)).Msg("knowledge base initialized")
		return append(Base(nil), DefaultFAQ...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw JSON against the FAQ schema and decodes it.
func Parse(raw []byte) (Base, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidKnowledgeBase, strings.Join(msgs, "; "))
	}

	var base Base
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnowledgeBase, err)
	}
	return base, nil
}

// WriteDefault writes DefaultFAQ to path with a 4-space indent.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create knowledge base dir: %w", err)
	}
	raw, err := encode(DefaultFAQ, "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write knowledge base: %w", err)
	}
	return nil
}

// Render formats the base for the system prompt.
func (b Base) Render() string {
	if b == nil {
		b = Base{}
	}
	raw, err := encode(b, "  ")
	if err != nil {
		return "[]"
	}
	return strings.TrimRight(string(raw), "\n")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode knowledge base: %w", err)
	}
	return buf.Bytes(), nil
}
