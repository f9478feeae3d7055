package domain

import (
	"encoding/json"
	"fmt"
)

// Len is the total number of questions over all blocks.
func (q *Quiz) Len() int {
	n := 0
	for _, b := range q.Blocks {
		n += len(b.Questions)
	}
	return n
}

// Question returns the question at idx.
func (q *Quiz) Question(idx Index) (*Question, error) {
	if idx.Block < 0 || idx.Block >= len(q.Blocks) {
		return nil, fmt.Errorf("%w: block %d", ErrQuestionNotFound, idx.Block)
	}
	block := &q.Blocks[idx.Block]
	if idx.Question < 0 || idx.Question >= len(block.Questions) {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, idx)
	}
	return &block.Questions[idx.Question], nil
}

// NextIndex returns the index following current, or the first question when
// current is nil. Moving past the end of a block only looks at the very next
// block: if that block is empty the sequence ends there, even when later
// blocks still hold questions.
func (q *Quiz) NextIndex(current *Index) (Index, error) {
	if current == nil {
		for bi, b := range q.Blocks {
			if len(b.Questions) > 0 {
				return Index{Block: bi}, nil
			}
		}
		return Index{}, ErrNoMoreQuestions
	}

	if current.Block < 0 || current.Block >= len(q.Blocks) {
		return Index{}, fmt.Errorf("%w: block %d", ErrQuestionNotFound, current.Block)
	}
	if current.Question+1 < len(q.Blocks[current.Block].Questions) {
		return Index{Block: current.Block, Question: current.Question + 1}, nil
	}

	next := current.Block + 1
	if next >= len(q.Blocks) || len(q.Blocks[next].Questions) == 0 {
		return Index{}, ErrNoMoreQuestions
	}
	return Index{Block: next}, nil
}

// QuestionView is the serialized form of a question. Correct is only set on
// views that reveal the answer.
type QuestionView struct {
	Title    string
	Renderer Renderer
	Answers  []Answer
	Extra    []Field
	Revealed bool
	Correct  Value
}

func (v QuestionView) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(v.Extra)+4)
	for _, f := range v.Extra {
		obj[f.Name] = f.Value
	}
	answers := v.Answers
	if answers == nil {
		answers = []Answer{}
	}
	obj["title"] = v.Title
	obj["renderer"] = v.Renderer
	obj["answers"] = answers
	if v.Revealed {
		obj["correct"] = v.Correct
	}
	return json.Marshal(obj)
}

// View is what teams and screens see while a question is open: the fields that
// give the answer away are left out.
func (q *Question) View() QuestionView {
	hidden := q.Renderer.concealedFields()
	answers := make([]Answer, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = a.without(hidden)
	}
	return QuestionView{
		Title:    q.Title,
		Renderer: q.Renderer,
		Answers:  answers,
		Extra:    q.Extra,
	}
}

// AnswerView reveals every answer field and the question-level correct marker.
func (q *Question) AnswerView() QuestionView {
	return QuestionView{
		Title:    q.Title,
		Renderer: q.Renderer,
		Answers:  q.Answers,
		Extra:    q.Extra,
		Revealed: true,
		Correct:  q.Correct,
	}
}

type BlockView struct {
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

type QuizView struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Blocks []BlockView `json:"blocks"`
}

// AnswerView renders the whole quiz with answers revealed, for the gamemaster.
func (q *Quiz) AnswerView() QuizView {
	view := QuizView{Name: q.Name, Title: q.Title, Blocks: make([]BlockView, len(q.Blocks))}
	for bi := range q.Blocks {
		block := &q.Blocks[bi]
		questions := make([]QuestionView, len(block.Questions))
		for qi := range block.Questions {
			questions[qi] = block.Questions[qi].AnswerView()
		}
		view.Blocks[bi] = BlockView{Title: block.Title, Questions: questions}
	}
	return view
}
