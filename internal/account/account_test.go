package account_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/logging"
	"acctdesk/internal/page"
	"acctdesk/internal/transport/transporttest"
	"acctdesk/internal/validation"
)

type alerts struct{ msgs []string }

func (a *alerts) Alert(msg string) { a.msgs = append(a.msgs, msg) }

func str(s string) *string { return &s }

func bob() page.Record {
	return page.Record{ID: 7, Name: "Bob", Data: map[string]*string{"phone": str("123")}}
}

type fixture struct {
	page     *page.Page
	registry *account.Registry
	fake     *transporttest.Fake
	alerts   *alerts
}

func newFixture(t *testing.T, fake *transporttest.Fake, records ...page.Record) *fixture {
	t.Helper()
	p := page.Render(records)
	al := &alerts{}
	reg, err := account.NewRegistry(context.Background(), p.Root, account.Deps{
		Transport:   fake,
		Notifier:    al,
		Log:         logging.Nop(),
		RowTemplate: p.RowTemplate,
	})
	require.NoError(t, err)
	return &fixture{page: p, registry: reg, fake: fake, alerts: al}
}

func (f *fixture) editor(t *testing.T, id int64) *account.Editor {
	t.Helper()
	e, ok := f.registry.Editor(id)
	require.True(t, ok)
	return e
}

func (f *fixture) base(id int64) element.Element {
	for _, b := range f.page.Results.QueryAll("." + account.BaseClass) {
		if c := b.Query("." + account.ContainerClass); c != nil && c.ID() == strconv.FormatInt(id, 10) {
			return b
		}
	}
	return nil
}

func values(root element.Element) []string {
	var out []string
	for _, in := range account.Inputs(root) {
		out = append(out, in.Value())
	}
	return out
}

func editControlsVisible(base element.Element) bool {
	return element.Visible(base.Query("."+account.SaveButtonClass)) &&
		element.Visible(base.Query("."+account.RollbackButtonClass)) &&
		element.Visible(base.Query("."+account.DeleteButtonClass)) &&
		element.Visible(base.Query("."+account.DetailsAddRowClass))
}

func viewControlsVisible(base element.Element) bool {
	return element.Visible(base.Query("."+account.ChangeButtonClass)) &&
		element.Visible(base.Query("."+account.ExportTXTClass)) &&
		element.Visible(base.Query("."+account.ExportJSONClass)) &&
		element.Visible(base.Query("."+account.ExportCSVClass))
}

func anyVisible(base element.Element, classes ...string) bool {
	for _, c := range classes {
		if element.Visible(base.Query("." + c)) {
			return true
		}
	}
	return false
}

func TestRegistry_BindsEveryRecord(t *testing.T) {
	second := page.Record{ID: 8, Name: "Ann", Data: map[string]*string{"mail": str("a@b.c")}}
	f := newFixture(t, transporttest.OK(""), bob(), second)

	assert.Equal(t, 2, f.registry.Len())
	assert.Equal(t, []int64{7, 8}, f.registry.IDs())
	_, ok := f.registry.Editor(99)
	assert.False(t, ok)
}

func TestRegistry_RejectsBadIDs(t *testing.T) {
	tests := []struct {
		name    string
		records []page.Record
	}{
		{name: "zero id", records: []page.Record{{ID: 0, Name: "x"}}},
		{name: "duplicate id", records: []page.Record{bob(), bob()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := page.Render(tt.records)
			_, err := account.NewRegistry(context.Background(), p.Root, account.Deps{Log: logging.Nop()})
			assert.ErrorIs(t, err, account.ErrMalformedID)
		})
	}
}

func TestParseRecordID(t *testing.T) {
	id, err := account.ParseRecordID(element.New("div").WithAttr(element.AttrID, " 42 "))
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = account.ParseRecordID(element.New("div").WithAttr(element.AttrID, "abc"))
	assert.ErrorIs(t, err, account.ErrMalformedID)
	_, err = account.ParseRecordID(nil)
	assert.ErrorIs(t, err, account.ErrMissingElement)
}

func TestRollbackRestoresOriginalValues(t *testing.T) {
	records := []page.Record{
		{ID: 7, Name: "Bob", Data: map[string]*string{"phone": str("123"), "city": str("Oslo"), "zip": str("0150")}},
		{ID: 8, Name: "Ann"},
	}
	for _, r := range records {
		t.Run(r.Name, func(t *testing.T) {
			f := newFixture(t, transporttest.OK(""), r)
			e := f.editor(t, r.ID)
			base := f.base(r.ID)
			before := values(base)

			require.NoError(t, e.StartChange())
			for i, in := range account.Inputs(base) {
				in.SetValue("changed-" + string(rune('a'+i)))
			}
			e.RollbackChange()

			assert.Equal(t, before, values(base))
			assert.Equal(t, account.Viewing, e.Phase())
			assert.Empty(t, f.fake.Calls)
		})
	}
}

func TestValidatorCountFollowsPhase(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	e := f.editor(t, 7)
	editable := len(account.Inputs(f.base(7)))

	for i := 0; i < 3; i++ {
		require.NoError(t, e.StartChange())
		assert.Equal(t, editable, e.ActiveValidators())

		if i%2 == 0 {
			e.RollbackChange()
		} else {
			e.StopChange()
		}
		assert.Zero(t, e.ActiveValidators())
		assert.False(t, editControlsVisible(f.base(7)), "buttons follow every transition")
		assert.False(t, f.base(7).HasClass(account.EditClass))
	}

	name := f.base(7).Query("." + account.TitleNameClass)
	assert.Zero(t, name.ListenerCount(element.FocusIn))
	assert.Zero(t, name.ListenerCount(element.FocusOut))
}

func TestStartChange_Twice(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	e := f.editor(t, 7)

	require.NoError(t, e.StartChange())
	assert.ErrorIs(t, e.StartChange(), account.ErrSessionActive)
	assert.Equal(t, len(account.Inputs(f.base(7))), e.ActiveValidators())
}

func TestApproveChange_Gating(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(base element.Element)
		want     account.Outcome
		requests int
	}{
		{
			name:     "valid change is sent",
			mutate:   func(base element.Element) { base.Query("." + account.TitleNameClass).SetValue("Bobby") },
			want:     account.OutcomeSaved,
			requests: 1,
		},
		{
			name:     "empty detail value is not sent",
			mutate:   func(base element.Element) { base.Query("." + account.DetailValueClass).SetValue(" ") },
			want:     account.OutcomeInvalid,
			requests: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, transporttest.OK(""), bob())
			e := f.editor(t, 7)
			require.NoError(t, e.StartChange())
			tt.mutate(f.base(7))

			assert.Equal(t, tt.want, e.ApproveChange(context.Background()))
			assert.Len(t, f.fake.Calls, tt.requests)
			assert.Equal(t, account.Viewing, e.Phase())
		})
	}
}

func TestApproveChange_NoDetailsSendsNothing(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), page.Record{ID: 8, Name: "Ann"})
	e := f.editor(t, 8)
	require.NoError(t, e.StartChange())
	f.base(8).Query("." + account.TitleNameClass).SetValue("Anna")

	assert.Equal(t, account.OutcomeNoPayload, e.ApproveChange(context.Background()))
	assert.Empty(t, f.fake.Calls)
	assert.Equal(t, account.Viewing, e.Phase())
	assert.False(t, editControlsVisible(f.base(8)))
	assert.Equal(t, "Anna", f.base(8).Query("."+account.TitleNameClass).Value(), "nothing to roll back")
}

func TestApproveChange_SendsPatch(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	e := f.editor(t, 7)
	require.NoError(t, e.StartChange())
	f.base(7).Query("." + account.DetailValueClass).SetValue("456")

	require.Equal(t, account.OutcomeSaved, e.ApproveChange(context.Background()))
	require.Len(t, f.fake.Calls, 1)

	call := f.fake.Calls[0]
	assert.Equal(t, http.MethodPatch, call.Method)
	assert.Equal(t, "/accounts/update", call.Path)
	want := account.Payload{ID: 7, Name: "Bob", Data: map[string]*string{"phone": str("456")}}
	if diff := cmp.Diff(want, call.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "456", f.base(7).Query("."+account.DetailValueClass).Value(), "saved values stay")
}

func TestApproveChange_WithoutSessionIsIgnored(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	assert.Equal(t, account.OutcomeIgnored, f.editor(t, 7).ApproveChange(context.Background()))
	assert.Empty(t, f.fake.Calls)
}

func TestValidationLabelIsIdempotent(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	require.NoError(t, f.editor(t, 7).StartChange())
	name := f.base(7).Query("." + account.TitleNameClass)
	name.SetValue("")

	name.Dispatch(element.FocusOut)
	name.Dispatch(element.FocusOut)
	assert.Len(t, name.Parent().QueryAll("."+validation.ErrorLabelClass), 1)
}

func TestAffordanceMirrorsPhase(t *testing.T) {
	f := newFixture(t, transporttest.Failing(http.StatusInternalServerError), bob())
	e := f.editor(t, 7)
	base := f.base(7)

	check := func(editing bool) {
		t.Helper()
		if editing {
			assert.True(t, editControlsVisible(base))
			assert.False(t, anyVisible(base, account.ChangeButtonClass, account.ExportTXTClass, account.ExportJSONClass, account.ExportCSVClass))
			return
		}
		assert.True(t, viewControlsVisible(base))
		assert.False(t, anyVisible(base, account.SaveButtonClass, account.RollbackButtonClass, account.DeleteButtonClass, account.DetailsAddRowClass))
	}

	check(false)
	require.NoError(t, e.StartChange())
	check(true)
	e.RollbackChange()
	check(false)

	require.NoError(t, e.StartChange())
	e.ApproveChange(context.Background())
	check(false)

	base.Query("." + account.ChangeButtonClass).Dispatch(element.Click)
	check(true)
	base.Query("." + account.RollbackButtonClass).Dispatch(element.Click)
	check(false)
}

func TestScenario_EmptyNameStaysAndIsLabelled(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	e := f.editor(t, 7)
	name := f.base(7).Query("." + account.TitleNameClass)

	require.NoError(t, e.StartChange())
	name.SetValue("")

	assert.Equal(t, account.OutcomeInvalid, e.ApproveChange(context.Background()))
	assert.Empty(t, f.fake.Calls)
	assert.Equal(t, "", name.Value())
	assert.True(t, validation.HasError(name))
	assert.Equal(t, validation.RequiredText, validation.ErrorText(name))
	assert.Equal(t, account.Viewing, e.Phase())
	assert.Zero(t, e.ActiveValidators())

	require.NoError(t, e.StartChange())
	assert.False(t, validation.HasError(name), "a new session clears stale labels")
}

func TestScenario_RejectedChangeIsRolledBack(t *testing.T) {
	for _, fake := range []*transporttest.Fake{
		transporttest.Failing(http.StatusUnprocessableEntity),
		{Err: transporttest.ErrNetwork},
	} {
		f := newFixture(t, fake, bob())
		e := f.editor(t, 7)
		base := f.base(7)
		name := base.Query("." + account.TitleNameClass)

		require.NoError(t, e.StartChange())
		name.SetValue("Bobby")

		assert.Equal(t, account.OutcomeRejected, e.ApproveChange(context.Background()))
		assert.Len(t, fake.Calls, 1)
		assert.Equal(t, "Bob", name.Value())
		assert.Equal(t, account.Viewing, e.Phase())
		assert.Empty(t, base.QueryAll("."+validation.ErrorLabelClass))
		_, ro := name.Attr(element.AttrReadonly)
		assert.True(t, ro)
	}
}

func TestScenario_DeleteHidesRecord(t *testing.T) {
	fake := &transporttest.Fake{Status: http.StatusNoContent}
	f := newFixture(t, fake, bob())
	e := f.editor(t, 7)
	base := f.base(7)

	require.NoError(t, e.StartChange())
	base.Query("." + account.DeleteButtonClass).Dispatch(element.Click)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, http.MethodDelete, fake.Calls[0].Method)
	assert.Equal(t, "/accounts/delete/7", fake.Calls[0].Path)
	assert.False(t, element.Visible(base.Query("."+account.ContainerClass)))
	assert.True(t, e.Deleted())
	assert.Equal(t, account.Viewing, e.Phase())
	assert.Zero(t, e.ActiveValidators())
	assert.False(t, base.HasClass(account.EditClass))
	assert.Empty(t, f.alerts.msgs)
}

func TestDeleteFailureAlertsAndKeepsState(t *testing.T) {
	f := newFixture(t, transporttest.Failing(http.StatusInternalServerError), bob())
	e := f.editor(t, 7)
	base := f.base(7)
	require.NoError(t, e.StartChange())

	err := e.Delete(context.Background())
	assert.ErrorIs(t, err, account.ErrDeleteFailed)
	assert.Len(t, f.alerts.msgs, 1)
	assert.Equal(t, account.Editing, e.Phase())
	assert.True(t, element.Visible(base))
	assert.False(t, e.Deleted())
}

func TestBusyRejectsReentry(t *testing.T) {
	fake := transporttest.OK("")
	f := newFixture(t, fake, bob())
	e := f.editor(t, 7)

	var startErr error
	var nested account.Outcome
	fake.OnSend = func(transporttest.Call) {
		assert.True(t, e.Busy())
		startErr = e.StartChange()
		nested = e.ApproveChange(context.Background())
		e.RollbackChange()
		e.StopChange()
		assert.True(t, editControlsVisible(f.base(7)), "layout untouched while busy")
	}

	require.NoError(t, e.StartChange())
	f.base(7).Query("." + account.TitleNameClass).SetValue("Bobby")
	assert.Equal(t, account.OutcomeSaved, e.ApproveChange(context.Background()))

	assert.ErrorIs(t, startErr, account.ErrBusy)
	assert.Equal(t, account.OutcomeIgnored, nested)
	assert.Len(t, fake.Calls, 1)
	assert.False(t, e.Busy())
	assert.Equal(t, "Bobby", f.base(7).Query("."+account.TitleNameClass).Value())
}

func TestDetails_AddAndRemoveRows(t *testing.T) {
	f := newFixture(t, transporttest.OK(""), bob())
	e := f.editor(t, 7)
	base := f.base(7)
	container := base.Query("." + account.DetailsContainerClass)
	details := account.NewDetails(container, f.page.RowTemplate)

	require.NoError(t, e.StartChange())
	assert.Len(t, base.QueryAll("."+account.RemoveRowClass), 1)

	base.Query("." + account.DetailsAddRowClass).Dispatch(element.Click)
	rows := details.Rows()
	require.Len(t, rows, 2)
	assert.True(t, element.Mutable(rows[1].Query("."+account.DetailNameClass)))

	rows[0].Query("." + account.RemoveRowClass).Dispatch(element.Click)
	assert.Len(t, details.Rows(), 1)

	e.RollbackChange()
	assert.Len(t, details.Rows(), 1, "row changes are not rolled back")
	assert.Empty(t, base.QueryAll("."+account.RemoveRowClass))
}

func TestDetails_ResetLeavesOneEmptyRow(t *testing.T) {
	container := element.New("div")
	d := account.NewDetails(container, page.RowTemplate())
	d.AddRow()
	d.AddRow()
	d.SetRowRemoveButtons()
	require.Equal(t, 2, d.ActiveButtons())

	d.Reset()
	require.Len(t, d.Rows(), 1)
	assert.Equal(t, 1, d.ActiveButtons())
	d.UnsetRowRemoveButtons()
	assert.Zero(t, d.ActiveButtons())

	assert.Nil(t, account.NewDetails(container, nil).AddRow())
}

func TestExtractor(t *testing.T) {
	rec := page.RenderRecord(page.Record{ID: 1, Name: "Bob", Data: map[string]*string{"a": str("1"), "b": str("2")}})
	details := account.NewDetails(rec.Query("."+account.DetailsContainerClass), nil)
	name := rec.Query("." + account.TitleNameClass)
	x := account.NewExtractor(name, details)

	rows := details.Rows()
	rows[1].Query("." + account.DetailValueClass).SetValue("")

	got, ok := x.Extract()
	require.True(t, ok)
	want := account.Payload{Name: "Bob", Data: map[string]*string{"a": str("1"), "b": nil}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	rows[0].Query("." + account.DetailNameClass).SetValue(" ")
	rows[1].Query("." + account.DetailNameClass).SetValue("")
	_, ok = x.Extract()
	assert.False(t, ok, "no keyed rows")

	name.SetValue("")
	_, ok = x.Extract()
	assert.False(t, ok)
	assert.True(t, validation.HasError(name))
}

func TestSnapshot(t *testing.T) {
	a, b := element.New("input").WithValue("1"), element.New("input").WithValue("2")
	snap := account.Capture([]element.Element{a, nil, b})
	require.Equal(t, 2, snap.Len())

	a.SetValue("x")
	b.SetValue("y")
	snap.Restore()
	assert.Equal(t, "1", a.Value())
	assert.Equal(t, "2", b.Value())
}

func TestOutcomeAndPhaseStrings(t *testing.T) {
	assert.Equal(t, "saved", account.OutcomeSaved.String())
	assert.Equal(t, "ignored", account.OutcomeIgnored.String())
	assert.Equal(t, "editing", account.Editing.String())
}
