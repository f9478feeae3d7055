package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Renderer selects how a question is displayed and scored.
type Renderer uint8

const (
	RendererBase Renderer = iota + 1
	RendererGuess
	RendererImage
	RendererSilentVideo
)

var rendererTags = map[Renderer]string{
	RendererBase:        "base",
	RendererGuess:       "guess",
	RendererImage:       "image",
	RendererSilentVideo: "silentVideo",
}

// ParseRenderer maps a definition tag to its Renderer.
func ParseRenderer(tag string) (Renderer, error) {
	for r, t := range rendererTags {
		if t == tag {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRenderer, tag)
}

func (r Renderer) String() string {
	if t, ok := rendererTags[r]; ok {
		return t
	}
	return fmt.Sprintf("Renderer(%d)", uint8(r))
}

func (r Renderer) MarshalText() ([]byte, error) {
	if _, ok := rendererTags[r]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRenderer, uint8(r))
	}
	return []byte(r.String()), nil
}

// concealedFields lists the answer fields hidden until answers are revealed.
func (r Renderer) concealedFields() []string {
	switch r {
	case RendererGuess, RendererImage:
		return []string{"correct", "text"}
	default:
		return []string{"correct"}
	}
}

// Index addresses a question as (block, question). It travels as [block, question].
type Index struct {
	Block    int
	Question int
}

func (i Index) String() string {
	return fmt.Sprintf("(%d, %d)", i.Block, i.Question)
}

func (i Index) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{i.Block, i.Question})
}

func (i *Index) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("question index: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("question index must have 2 elements, got %d", len(pair))
	}
	i.Block, i.Question = pair[0], pair[1]
	return nil
}

// Field is one named entry of an Answer.
type Field struct {
	Name  string
	Value Value
}

// Answer is an ordered set of renderer-specific fields such as text or correct.
type Answer struct {
	fields []Field
}

func NewAnswer(fields ...Field) Answer {
	return Answer{fields: append([]Field(nil), fields...)}
}

// Fields returns a copy of the answer's fields in definition order.
func (a Answer) Fields() []Field {
	return append([]Field(nil), a.fields...)
}

func (a Answer) Get(name string) (Value, bool) {
	for _, f := range a.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (a Answer) without(names []string) Answer {
	out := Answer{fields: make([]Field, 0, len(a.fields))}
next:
	for _, f := range a.fields {
		for _, n := range names {
			if f.Name == n {
				continue next
			}
		}
		out.fields = append(out.fields, f)
	}
	return out
}

func (a Answer) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range a.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Answer) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: answer must be a mapping", node.Line)
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v Value
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("answer field %q: %w", node.Content[i].Value, err)
		}
		fields = append(fields, Field{Name: node.Content[i].Value, Value: v})
	}
	a.fields = fields
	return nil
}

// Question is immutable once loaded.
type Question struct {
	Title    string
	Renderer Renderer
	Answers  []Answer
	// Correct is an optional question-level answer marker; null when absent.
	Correct Value
	// Extra holds renderer-specific settings like min, max, image or video.
	Extra []Field
}

func (q *Question) String() string {
	return fmt.Sprintf("Question(%s)", q.Title)
}

type QuestionBlock struct {
	Title     string
	Questions []Question
}

// Quiz is the immutable question catalog shared by every game created from it.
type Quiz struct {
	Name   string
	Title  string
	Blocks []QuestionBlock
}

// Team is a participant of one game.
type Team struct {
	Address string
	Name    string
	Token   string
	// CurrentAnswer is nil until the team guesses in the current round.
	CurrentAnswer *Value
	// CurrentEmotion is an opaque client payload, nil when none was sent.
	CurrentEmotion     json.RawMessage
	CurrentAnswerScore *int
	CurrentScore       int
	Active             bool
}

func NewTeam(address, name, token string) *Team {
	return &Team{Address: address, Name: name, Token: token, Active: true}
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(%s)", t.Name)
}

// Guess records the team's answer; a null value clears it.
func (t *Team) Guess(answer Value) {
	if answer.IsNull() {
		t.CurrentAnswer = nil
		return
	}
	t.CurrentAnswer = &answer
}

func (t *Team) ShowEmotion(emotion json.RawMessage) {
	t.CurrentEmotion = append(json.RawMessage(nil), emotion...)
}

// Reward adds points to the cumulative score and clears the round score.
func (t *Team) Reward(points int) {
	t.CurrentScore += points
	zero := 0
	t.CurrentAnswerScore = &zero
}

func (t *Team) ResetAnswer() {
	t.CurrentAnswer = nil
}

type Gamemaster struct {
	Address string
	Token   string
}

type Screen struct {
	Address string
	Token   string
}
