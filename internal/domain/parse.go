package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	defaultQuizName   = "Quiz Name"
	defaultQuizTitle  = "Title"
	defaultBlockTitle = "Block Title"
)

type quizDocument struct {
	Name       *string         `yaml:"name"`
	StartTitle *string         `yaml:"startTitle"`
	Blocks     []blockDocument `yaml:"blocks"`
}

type blockDocument struct {
	StartTitle *string     `yaml:"startTitle"`
	Questions  []yaml.Node `yaml:"questions"`
}

// ParseQuiz loads a quiz definition. JSON documents are accepted as well as
// YAML since the former is a subset of the latter.
func ParseQuiz(data []byte) (*Quiz, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedQuiz)
	}

	var doc quizDocument
	if err := root.Content[0].Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}

	quiz := &Quiz{
		Name:   valueOr(doc.Name, defaultQuizName),
		Title:  valueOr(doc.StartTitle, defaultQuizTitle),
		Blocks: make([]QuestionBlock, 0, len(doc.Blocks)),
	}
	for bi, b := range doc.Blocks {
		block := QuestionBlock{
			Title:     valueOr(b.StartTitle, defaultBlockTitle),
			Questions: make([]Question, 0, len(b.Questions)),
		}
		for qi := range b.Questions {
			q, err := parseQuestion(&b.Questions[qi])
			if err != nil {
				return nil, fmt.Errorf("block %d question %d: %w", bi, qi, err)
			}
			block.Questions = append(block.Questions, q)
		}
		quiz.Blocks = append(quiz.Blocks, block)
	}
	return quiz, nil
}

func parseQuestion(node *yaml.Node) (Question, error) {
	if node.Kind != yaml.MappingNode {
		return Question{}, fmt.Errorf("%w: line %d: question must be a mapping", ErrMalformedQuiz, node.Line)
	}

	var (
		q           Question
		hasTitle    bool
		hasRenderer bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "title":
			title, ok := scalarString(val)
			if !ok {
				return Question{}, fmt.Errorf("%w: line %d: title must be a string", ErrMalformedQuiz, val.Line)
			}
			q.Title, hasTitle = title, true
		case "renderer":
			tag, ok := scalarString(val)
			if !ok {
				return Question{}, fmt.Errorf("%w: line %d: renderer must be a string", ErrMalformedQuiz, val.Line)
			}
			r, err := ParseRenderer(tag)
			if err != nil {
				return Question{}, err
			}
			q.Renderer, hasRenderer = r, true
		case "answers":
			if err := val.Decode(&q.Answers); err != nil {
				return Question{}, fmt.Errorf("%w: answers: %v", ErrMalformedQuiz, err)
			}
		case "correct":
			if err := val.Decode(&q.Correct); err != nil {
				return Question{}, fmt.Errorf("%w: correct: %v", ErrMalformedQuiz, err)
			}
		default:
			var v Value
			if err := val.Decode(&v); err != nil {
				return Question{}, fmt.Errorf("%w: %s: %v", ErrMalformedQuiz, key, err)
			}
			q.Extra = append(q.Extra, Field{Name: key, Value: v})
		}
	}

	if !hasTitle {
		return Question{}, fmt.Errorf("%w: line %d: title is required", ErrMalformedQuiz, node.Line)
	}
	if !hasRenderer {
		return Question{}, fmt.Errorf("%w: line %d: renderer is required", ErrMalformedQuiz, node.Line)
	}
	if q.Answers == nil {
		q.Answers = []Answer{}
	}
	return q, nil
}

func scalarString(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode || node.ShortTag() == "!!null" {
		return "", false
	}
	return node.Value, true
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

type definitionDocument struct {
	Name       string            `json:"name"`
	StartTitle string            `json:"startTitle"`
	Blocks     []definitionBlock `json:"blocks"`
}

type definitionBlock struct {
	StartTitle string         `json:"startTitle"`
	Questions  []QuestionView `json:"questions"`
}

// MarshalDefinition renders q as a JSON definition document that ParseQuiz
// reads back into an equal quiz. Answer fields keep their order.
func (q *Quiz) MarshalDefinition() ([]byte, error) {
	doc := definitionDocument{Name: q.Name, StartTitle: q.Title, Blocks: make([]definitionBlock, len(q.Blocks))}
	for bi := range q.Blocks {
		block := &q.Blocks[bi]
		questions := make([]QuestionView, len(block.Questions))
		for qi := range block.Questions {
			questions[qi] = block.Questions[qi].AnswerView()
		}
		doc.Blocks[bi] = definitionBlock{StartTitle: block.Title, Questions: questions}
	}
	return json.Marshal(doc)
}
