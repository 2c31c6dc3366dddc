/*
Package fallback is the language-model collaborator invoked when the
deterministic parser returns no match.

PURPOSE:
  The Planner turns free-form requests the pattern table cannot resolve into
  structured PTO plans via an OpenAI-compatible chat model. Model output is
  never trusted wholesale: dates must parse, categories outside the closed
  set fall back to the default, and the working-day count and holiday
  annotation are always recomputed by the calculator.

SESSION CONTEXT:
  The planner is stateless. Conversation history is an explicit per-session
  Conversation value owned by the caller and passed into each call.

SEE ALSO:
  - conversation.go: the per-session history carrier
  - dateparse: the deterministic path that runs first
*/
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/config"
	"github.com/warp/pto-scheduler/dateparse"
	"github.com/warp/pto-scheduler/pto"
)

// chatClient is the slice of the OpenAI client the planner uses.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner asks a chat model to interpret requests the parser could not.
type Planner struct {
	client chatClient
	model  string
	calc   *calendar.Calculator
}

// NewPlanner builds a planner from config. Returns nil when no API key is
// configured; callers treat a nil planner as "fallback disabled".
func NewPlanner(cfg config.AI, calc *calendar.Calculator) *Planner {
	if cfg.APIKey == "" {
		return nil
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Planner{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		calc:   calc,
	}
}

// newPlannerWithClient is the test seam.
func newPlannerWithClient(client chatClient, model string, calc *calendar.Calculator) *Planner {
	return &Planner{client: client, model: model, calc: calc}
}

// Plan is a validated schedule produced from model output. Identity and
// status are still assigned by the caller.
type Plan struct {
	StartDate    calendar.Date
	EndDate      calendar.Date
	Type         string
	NumberOfDays int
	ExcludedDays calendar.Exclusions
	HolidayInfo  string
}

// plannedJSON is the raw shape the model is asked to produce.
type plannedJSON struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
}

// PlanSchedule interprets a scheduling request against existing records and
// the conversation history.
func (p *Planner) PlanSchedule(ctx context.Context, request string, records []pto.Request, now calendar.Date, history []Message) (*Plan, error) {
	prompt := fmt.Sprintf(`Given the following context:
- PTO records: %s
- Holidays: %s
- Current date: %s
- Previous conversation: %s

User request: %s

Parse this request considering the conversation history and respond with a JSON object containing:
- startDate: The start date (YYYY-MM-DD)
- endDate: The end date (YYYY-MM-DD)
- type: The PTO type (optional, default to "Paid Time Off")

If the request is a follow-up to a previous question or refers to dates/information mentioned before, use the conversation history to understand the context.

Format your response as a markdown code block with JSON.`,
		mustJSON(records), mustJSON(p.calc.Calendar().Holidays()), now, mustJSON(history), request)

	reply, err := p.chat(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("could not parse the model response into a pto plan: %w", err)
	}
	var planned plannedJSON
	if err := json.Unmarshal(raw, &planned); err != nil {
		return nil, fmt.Errorf("could not parse the model response into a pto plan: %w", err)
	}
	return p.validate(planned)
}

// validate turns raw model output into a Plan, recomputing everything the
// core can compute itself.
func (p *Planner) validate(planned plannedJSON) (*Plan, error) {
	if planned.StartDate == "" || planned.EndDate == "" {
		return nil, fmt.Errorf("model response is missing startDate or endDate")
	}
	start, err := calendar.ParseDate(planned.StartDate)
	if err != nil {
		return nil, fmt.Errorf("model produced invalid startDate %q: %w", planned.StartDate, err)
	}
	end, err := calendar.ParseDate(planned.EndDate)
	if err != nil {
		return nil, fmt.Errorf("model produced invalid endDate %q: %w", planned.EndDate, err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("model produced inverted range %s > %s", start, end)
	}

	category := planned.Type
	if !pto.IsValidCategory(category) {
		category = pto.DefaultType
	}

	plan := &Plan{
		StartDate:    start,
		EndDate:      end,
		Type:         category,
		NumberOfDays: p.calc.CountWorkingDays(start, end),
		ExcludedDays: calendar.AllExclusions(),
	}
	if holidays := p.calc.Calendar().HolidaysBetween(start, end); len(holidays) > 0 {
		plan.HolidayInfo = dateparse.HolidayNote(holidays)
	}
	return plan, nil
}

// UpdatePlan identifies the record to change and carries the new fields.
type UpdatePlan struct {
	OriginalStartDate calendar.Date `json:"originalStartDate"`
	NewDetails        pto.Fields    `json:"newDetails"`
}

// PlanUpdate interprets an update request: which record, and what changes.
func (p *Planner) PlanUpdate(ctx context.Context, request string, records []pto.Request, now calendar.Date, history []Message) (*UpdatePlan, error) {
	prompt := fmt.Sprintf(`Given the following context:
- PTO records: %s
- Holidays: %s
- Current date: %s
- Previous conversation: %s

Update request: %s

Identify the PTO to update and provide the new details as a JSON object with:
- originalStartDate: The start date (YYYY-MM-DD) of the record to change
- newDetails: An object with only the fields to change (startDate, endDate, type, numberOfDays, status)

Format your response as a markdown code block with JSON.`,
		mustJSON(records), mustJSON(p.calc.Calendar().Holidays()), now, mustJSON(history), request)

	reply, err := p.chat(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("could not parse the model response into an update plan: %w", err)
	}
	var plan UpdatePlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("could not parse the model response into an update plan: %w", err)
	}
	if plan.OriginalStartDate.IsZero() {
		return nil, fmt.Errorf("model response is missing originalStartDate")
	}
	return &plan, nil
}

// Query answers a conversational question about existing records.
func (p *Planner) Query(ctx context.Context, query string, records []pto.Request, now calendar.Date, history []Message) (string, error) {
	prompt := fmt.Sprintf(`Given the following context:
- PTO records: %s
- Holidays: %s
- Current date: %s
- Previous conversation: %s

User query: %s

Provide a natural response about the PTO information, considering the conversation history. Include specific details about dates, types, and total days when relevant.`,
		mustJSON(records), mustJSON(p.calc.Calendar().Holidays()), now, mustJSON(history), query)

	return p.chat(ctx, prompt, history)
}

// chat sends the history plus prompt and returns the first choice.
func (p *Planner) chat(ctx context.Context, prompt string, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// jsonFenceRe matches a ```json markdown fence.
var jsonFenceRe = regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n\\s*```")

// ExtractJSON pulls the JSON payload out of a markdown-fenced model reply.
// A bare JSON object with no fence is accepted too.
func ExtractJSON(reply string) ([]byte, error) {
	if m := jsonFenceRe.FindStringSubmatch(reply); m != nil {
		return []byte(m[1]), nil
	}
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return []byte(trimmed), nil
	}
	return nil, fmt.Errorf("no JSON found in response")
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
