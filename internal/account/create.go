package account

import (
	"context"
	"net/http"
	"time"

	"acctdesk/internal/element"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
	"acctdesk/internal/validation"
)

const (
	createPath = "/accounts/create"

	createdText      = "Account created"
	createFailedText = "Could not create the account"
)

// Indicator briefly shows a confirmation label in the form title.
type Indicator struct {
	container element.Element
	timeout   time.Duration
	schedule  element.Scheduler
}

func NewIndicator(container element.Element, timeout time.Duration, schedule element.Scheduler) *Indicator {
	return &Indicator{container: container, timeout: timeout, schedule: schedule}
}

// Show appends the label and removes it once the timeout elapses.
func (i *Indicator) Show() {
	if i.container == nil {
		return
	}
	label := element.New("span", CreatedLabelClass).WithText(createdText)
	i.container.AppendChild(label)
	if i.schedule == nil {
		return
	}
	container := i.container
	i.schedule(i.timeout, func() { container.RemoveChild(label) })
}

// CreateForm submits new accounts from the create form markup.
type CreateForm struct {
	content   element.Element
	name      element.Element
	details   *Details
	button    element.Element
	indicator *Indicator
	extractor *Extractor
	tr        transport.Transport
	log       logging.Logger

	listeners validation.Listeners
	inputs    []element.Element

	nameErr      element.ListenerID
	nameErrBound bool
}

// CreateDeps are the collaborators of the create form.
type CreateDeps struct {
	Transport   transport.Transport
	Log         logging.Logger
	RowTemplate element.Element
	Schedule    element.Scheduler
	// IndicatorTimeout is how long the confirmation stays visible.
	IndicatorTimeout time.Duration
}

// NewCreateForm binds the create form rendered under base. Its inputs are
// editable from the start.
func NewCreateForm(base element.Element, deps CreateDeps) (*CreateForm, error) {
	content := query(base, ContentClass)
	name := query(base, TitleNameClass)
	button := query(base, CreateButtonClass)
	if content == nil || name == nil || button == nil {
		return nil, ErrMissingElement
	}
	details := NewDetails(query(base, DetailsContainerClass), deps.RowTemplate)
	details.BindRowAddButton(query(base, DetailsAddRowClass))

	for _, in := range Inputs(base) {
		in.RemoveAttr(element.AttrReadonly)
	}
	timeout := deps.IndicatorTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &CreateForm{
		content:   content,
		name:      name,
		details:   details,
		button:    button,
		indicator: NewIndicator(query(base, TitleContainerClass), timeout, deps.Schedule),
		extractor: NewExtractor(name, details),
		tr:        deps.Transport,
		log:       deps.Log,
	}, nil
}

// Init binds the submit gesture.
func (f *CreateForm) Init(ctx context.Context) {
	f.button.Listen(element.Click, func(element.Event) { f.Submit(ctx) })
	f.details.SetRowRemoveButtons()
}

// Submit validates the form and sends it. Invalid fields get focus
// validation attached once so the user sees errors clear as they type.
func (f *CreateForm) Submit(ctx context.Context) Outcome {
	f.inputs = Inputs(f.content)
	validation.RemoveAll(f.inputs)

	if !validation.CheckAll(f.inputs) {
		if f.listeners.Count() == 0 {
			f.listeners.Attach(f.inputs, validation.Check, false)
		}
		return OutcomeInvalid
	}
	payload, ok := f.extractor.Extract()
	if !ok {
		return OutcomeNoPayload
	}

	resp, err := f.tr.Send(ctx, http.MethodPost, createPath, payload)
	if err := transport.Check(resp, err); err != nil {
		f.log.Warn(ctx, "create rejected", "name", payload.Name, "err", err)
		msg := resp.ErrorMessage()
		if msg == "" {
			msg = createFailedText
		}
		f.showNameError(msg)
		return OutcomeRejected
	}
	f.log.Info(ctx, "account created", "name", payload.Name)
	f.indicator.Show()
	return OutcomeSaved
}

// Reset clears the form back to an empty name and a single empty row.
func (f *CreateForm) Reset() {
	f.name.SetValue("")
	f.details.Reset()
	f.listeners.Detach()
	f.clearNameError()
	validation.RemoveAll(f.inputs)
}

func (f *CreateForm) showNameError(msg string) {
	validation.CreateError(f.name, msg)
	if f.nameErrBound {
		return
	}
	f.nameErr = f.name.Listen(element.FocusOut, func(element.Event) {
		f.clearNameError()
	})
	f.nameErrBound = true
}

func (f *CreateForm) clearNameError() {
	validation.RemoveError(f.name)
	if f.nameErrBound {
		f.name.Unlisten(element.FocusOut, f.nameErr)
		f.nameErrBound = false
	}
}
