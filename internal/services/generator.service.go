package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"veluna/config"
	"veluna/internal/calendar"
	"veluna/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// GenerateRequest carries everything the generator needs to produce one
// daily message. ExcludedOils are names the result must not recommend.
// Replacement requests a single substitute oil for an existing message
// instead of a primary/alternative pair.
type GenerateRequest struct {
	Language     string
	Date         time.Time
	DayType      calendar.DayType
	ExcludedOils []string
	Replacement  bool
}

// GeneratedMessage is the structured result: the two oils of the day plus
// the rendered text delivered to the recipient.
type GeneratedMessage struct {
	PrimaryOil     string `json:"primary_oil"`
	AlternativeOil string `json:"alternative_oil"`
	Text           string `json:"message"`
}

// ContentGenerator produces daily message content. Failures are reported as
// errors; callers decide whether to skip, retry, or surface them.
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedMessage, error)
}

const (
	openAIEndpoint       = "https://api.openai.com/v1/chat/completions"
	generatorHTTPTimeout = 60 * time.Second
)

var dayEnergy = map[time.Weekday]string{
	time.Monday:    "New beginnings, fresh starts, intention setting, new chapter",
	time.Tuesday:   "Action, momentum, courage, forward movement, determination",
	time.Wednesday: "Balance, reflection, midpoint recalibration, harmony, wisdom",
	time.Thursday:  "Expansion, growth, gratitude, abundance, manifestation",
	time.Friday:    "Release, completion, celebration, freedom, joy",
	time.Saturday:  "Rest, self-care, rejuvenation, play, personal nourishment",
	time.Sunday:    "Reflection, spiritual connection, preparation, inner peace, renewal",
}

type monthTheme struct {
	Theme  string
	Focus  string
	Energy string
}

var monthThemes = map[time.Month]monthTheme{
	time.January: {
		Theme:  "New Beginnings & Fresh Intentions",
		Focus:  "clarity, goal setting, renewal, purification, fresh start energy",
		Energy: "Clean slate, new year momentum, determination, clarity of vision",
	},
	time.February: {
		Theme:  "Self-Love & Heart Connection",
		Focus:  "self-compassion, heart healing, love, emotional warmth, inner acceptance",
		Energy: "Love yourself first, heart-centered living, emotional nurturing, tenderness",
	},
	time.March: {
		Theme:  "Awakening & Rebirth",
		Focus:  "spring awakening, growth, vitality, rebirth, emerging energy",
		Energy: "Nature awakening, fresh growth, renewed vitality, blossoming potential",
	},
	time.April: {
		Theme:  "Growth & Expansion",
		Focus:  "flowering, manifestation, joy, growth, creative expression",
		Energy: "Full bloom energy, expansion, creative flow, joyful manifestation",
	},
	time.May: {
		Theme:  "Abundance & Gratitude",
		Focus:  "abundance mindset, gratitude, appreciation, fullness, prosperity",
		Energy: "Abundant blessings, grateful heart, prosperity consciousness, fullness of life",
	},
	time.June: {
		Theme:  "Light & Radiance",
		Focus:  "inner light, radiance, confidence, brightness, solar energy",
		Energy: "Maximum light, radiant confidence, summer vitality, brightness of being",
	},
	time.July: {
		Theme:  "Freedom & Joy",
		Focus:  "liberation, joy, celebration, independence, authentic expression",
		Energy: "Freedom to be yourself, joyful celebration, authentic living, liberation",
	},
	time.August: {
		Theme:  "Power & Strength",
		Focus:  "personal power, inner strength, courage, leadership, boldness",
		Energy: "Peak power, inner strength, courageous action, stepping into leadership",
	},
	time.September: {
		Theme:  "Harvest & Reflection",
		Focus:  "reaping rewards, reflection, wisdom, preparation, harvest time",
		Energy: "Harvest your efforts, reflect on growth, gather wisdom, prepare for change",
	},
	time.October: {
		Theme:  "Transformation & Release",
		Focus:  "letting go, transformation, deep change, shedding old patterns",
		Energy: "Release what no longer serves, transformation, deep inner change, renewal through release",
	},
	time.November: {
		Theme:  "Gratitude & Inner Warmth",
		Focus:  "thankfulness, inner warmth, appreciation, cozy comfort, heart gratitude",
		Energy: "Deep gratitude, counting blessings, inner warmth, thankful heart",
	},
	time.December: {
		Theme:  "Reflection & Sacred Rest",
		Focus:  "rest, reflection, sacred pause, completion, spiritual connection",
		Energy: "Year-end reflection, sacred rest, completion of cycles, quiet contemplation",
	},
}

var dayTypeGuidance = map[calendar.DayType]string{
	calendar.DayTypePortal:   "Today is a PORTAL DAY, a high-energy date for deep transformation work. Lean the message toward intensity, breakthroughs, and spiritual openness.",
	calendar.DayTypeFullMoon: "Today is a FULL MOON day. Lean the message toward release, culmination, and letting go of what no longer serves.",
	calendar.DayTypeNewMoon:  "Today is a NEW MOON day. Lean the message toward intention setting, planting seeds, and quiet new beginnings.",
}

// OpenAIGenerator builds a wellness prompt from the day's context and the
// oil catalog and asks a chat completion model for a structured reply.
type OpenAIGenerator struct {
	apiKey string
	model  string
	client *http.Client
	oils   repositories.OilRepository
	log    logger.Logger
}

func NewOpenAIGenerator(config config.Config, oils repositories.OilRepository) *OpenAIGenerator {
	return &OpenAIGenerator{
		apiKey: config.OpenAIAPIKey,
		model:  config.OpenAIModel,
		client: &http.Client{Timeout: generatorHTTPTimeout},
		oils:   oils,
		log:    logger.New("generator"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *OpenAIGenerator) Generate(
	ctx context.Context,
	req GenerateRequest,
) (*GeneratedMessage, error) {
	log := g.log.Function("Generate")

	catalog, err := g.oils.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(req.ExcludedOils))
	for _, name := range req.ExcludedOils {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	var oilLines []string
	for _, oil := range catalog {
		if _, skip := excluded[strings.ToLower(oil.Name)]; skip {
			continue
		}
		line := "- " + oil.Name
		if oil.EnergeticEffects != "" {
			line += " (" + oil.EnergeticEffects + ")"
		}
		oilLines = append(oilLines, line)
	}
	minOils := 2
	if req.Replacement {
		minOils = 1
	}
	if len(oilLines) < minOils {
		return nil, log.ErrMsg("not enough oils left after exclusions")
	}

	prompt := buildPrompt(req, strings.Join(oilLines, "\n"))

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage(req.Language)},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, log.Err("failed to marshal chat request", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		openAIEndpoint,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, log.Err("failed to build chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, log.Err("chat completion request failed", err)
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, log.Err("failed to decode chat response", err, "status", resp.StatusCode)
	}
	if chat.Error != nil {
		return nil, log.ErrMsg(fmt.Sprintf("chat completion error: %s", chat.Error.Message))
	}
	if resp.StatusCode != http.StatusOK || len(chat.Choices) == 0 {
		return nil, log.ErrMsg(fmt.Sprintf("unexpected chat response status %d", resp.StatusCode))
	}

	message, err := parseGeneratedMessage(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, log.Err("failed to parse generated message", err)
	}

	log.Info("Daily message generated",
		"language", req.Language,
		"dayType", req.DayType,
		"primaryOil", message.PrimaryOil,
	)
	return message, nil
}

// parseGeneratedMessage tolerates models that wrap the JSON reply in a
// markdown code fence.
func parseGeneratedMessage(content string) (*GeneratedMessage, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var message GeneratedMessage
	if err := json.Unmarshal([]byte(content), &message); err != nil {
		return nil, err
	}
	if message.PrimaryOil == "" || message.Text == "" {
		return nil, fmt.Errorf("incomplete generated message")
	}

	return &message, nil
}

func systemMessage(language string) string {
	if language == "de" {
		return "Du bist ein mitfühlender Wellness-Guide, der bedeutungsvolle tägliche Affirmationen erstellt, die mit ätherischen Ölempfehlungen kombiniert werden. Antworte IMMER auf DEUTSCH und liefere die Antwort als JSON."
	}
	return "You are a compassionate wellness guide who creates meaningful daily affirmations paired with essential oil recommendations. Reply with JSON."
}

func buildPrompt(req GenerateRequest, oilList string) string {
	weekday := req.Date.Weekday()
	month := req.Date.Month()

	theme, ok := monthThemes[month]
	if !ok {
		theme = monthTheme{
			Theme:  "Balance & Presence",
			Focus:  "mindfulness, presence, balance",
			Energy: "Present moment awareness",
		}
	}
	energy, ok := dayEnergy[weekday]
	if !ok {
		energy = "Balance and presence"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s, %s.\n\n", weekday, req.Date.Format("January 2, 2006"))
	fmt.Fprintf(&b, "MONTHLY THEME - %s: %s\nMonthly Focus: %s\nMonthly Energy: %s\n\n",
		month, theme.Theme, theme.Focus, theme.Energy)
	fmt.Fprintf(&b, "DAILY ENERGY - %s:\n%s\n\n", weekday, energy)

	if guidance, ok := dayTypeGuidance[req.DayType]; ok {
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}

	language := "English"
	if req.Language == "de" {
		language = "German"
	}

	if req.Replacement {
		fmt.Fprintf(&b, `Generate a replacement oil message in %s with three components woven into one flowing text:

1. AFFIRMATION: a powerful, personal affirmation (2-3 sentences) in first person that integrates the monthly theme and the daily energy.
2. OIL RECOMMENDATION: select exactly ONE essential oil from the list below and briefly explain why it fits this specific day. Do not mention any other oil.
3. USAGE RITUAL: a specific, mindful application method for that oil.

Keep the tone warm, personal, and uplifting. Use emojis sparingly.

Available oils:
%s

Respond with ONLY a JSON object, no other text:
{"primary_oil": "<name from the list>", "message": "<the complete rendered message>"}
`, language, oilList)
		return b.String()
	}

	fmt.Fprintf(&b, `Generate a daily message in %s with three components woven into one flowing text:

1. AFFIRMATION: a powerful, personal affirmation (2-3 sentences) in first person that integrates the monthly theme and the daily energy.
2. OIL RECOMMENDATION: select ONE essential oil from the list below as the primary recommendation and ONE different oil as an alternative. Briefly explain why the primary oil fits this specific day.
3. USAGE RITUAL: a specific, mindful application method for the primary oil.

Keep the tone warm, personal, and uplifting. Use emojis sparingly.

Available oils:
%s

Respond with ONLY a JSON object, no other text:
{"primary_oil": "<name from the list>", "alternative_oil": "<different name from the list>", "message": "<the complete rendered message>"}
`, language, oilList)

	return b.String()
}
