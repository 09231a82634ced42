package player

// Layout tells the renderer how to compose the current slide
type Layout string

const (
	LayoutCaption Layout = "caption"
	LayoutQuiz    Layout = "quiz"
)

// AnswerView is one answer button. Correctness is only revealed for the pick.
type AnswerView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// QuizView is the quiz overlay of the current slide
type QuizView struct {
	Question string       `json:"question"`
	Answers  []AnswerView `json:"answers"`
	State    string       `json:"state"`
	Correct  *bool        `json:"correct,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// View is what a screen needs to draw the player
type View struct {
	State        string    `json:"state"`
	Index        int       `json:"index"`
	Total        int       `json:"total"`
	SlideID      string    `json:"slideId,omitempty"`
	Layout       Layout    `json:"layout,omitempty"`
	Image        string    `json:"image,omitempty"`
	ImageBlurred bool      `json:"imageBlurred"`
	ImageDimmed  bool      `json:"imageDimmed"`
	Caption      string    `json:"caption,omitempty"`
	Quiz         *QuizView `json:"quiz,omitempty"`
	CanAdvance   bool      `json:"canAdvance"`
	CanRetreat   bool      `json:"canRetreat"`
}

// View renders the current state. A quiz slide shows only the quiz over a
// blurred, dimmed image; any other slide a sharp image and its caption.
func (p *Player) View() View {
	v := View{State: p.state.String(), Total: p.deck.Len()}
	if p.state != Presenting {
		return v
	}

	i := p.deck.Cursor()
	slide, ok := p.deck.At(i)
	if !ok {
		return v
	}

	v.Index = i
	v.SlideID = slide.ID
	v.Image = slide.Image
	v.CanAdvance = i+1 < v.Total
	v.CanRetreat = i > 0

	if !slide.HasQuiz() {
		v.Layout = LayoutCaption
		v.Caption = slide.Phrase
		return v
	}

	v.Layout = LayoutQuiz
	v.ImageBlurred = true
	v.ImageDimmed = true

	outcome, answered := p.quiz.Outcome()
	qv := &QuizView{
		Question: slide.Quiz.Question,
		State:    p.quiz.State().String(),
	}
	for _, a := range slide.Quiz.Answers {
		qv.Answers = append(qv.Answers, AnswerView{
			ID:       a.ID,
			Text:     a.Text,
			Selected: answered && a.ID == outcome.AnswerID,
		})
	}
	if answered {
		correct := outcome.Correct
		qv.Correct = &correct
		qv.Message = outcome.Message
	}
	v.Quiz = qv
	return v
}
