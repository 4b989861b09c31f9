// Package page renders account records into the element tree that the
// editors bind to and the terminal host displays.
package page

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/transport"
)

// Layout classes outside the account markup itself.
const (
	BodyClass          = "body"
	HeaderClass        = "header"
	MainClass          = "main"
	SearchResultClass  = "search-result"
	FieldClass         = "field"
	ButtonsClass       = "account__buttons"
	AddLinkClass       = "account-add__lnk"
	CreateTitleClass   = "account-create__title"
	CreateCloseClass   = "account-create__close"
	EmptyResultClass   = "search-empty"
	AttrPlaceholder    = "placeholder"
	defaultDetailLabel = "Field"
)

// Record is one account as delivered by the backend.
type Record struct {
	ID   int64              `json:"id"`
	Name string             `json:"name"`
	Data map[string]*string `json:"data"`
}

// Detail is one rendered key/value row.
type Detail struct {
	Key   string
	Value string
}

// Details returns the record's rows sorted by key.
func (r Record) Details() []Detail {
	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Detail, 0, len(keys))
	for _, k := range keys {
		d := Detail{Key: k}
		if v := r.Data[k]; v != nil {
			d.Value = *v
		}
		out = append(out, d)
	}
	return out
}

// Page is a rendered screen: the header, the search results and the create form.
type Page struct {
	Root        *element.Node
	Header      *element.Node
	Results     *element.Node
	Create      *element.Node
	RowTemplate *element.Node
}

// Render builds the full page for records.
func Render(records []Record) *Page {
	p := &Page{
		Header:      renderHeader(),
		Results:     element.New("div", SearchResultClass),
		Create:      RenderCreateForm(),
		RowTemplate: RowTemplate(),
	}
	for _, r := range records {
		p.Results.AppendChild(RenderRecord(r))
	}
	if len(records) == 0 {
		p.Results.AppendChild(element.New("p", EmptyResultClass).WithText("No accounts found."))
	}
	p.Root = element.New("div", BodyClass).Build(
		p.Header,
		element.New("div", MainClass).Build(p.Results, p.Create),
	)
	return p
}

// RenderRecord builds the read-only markup of a single record.
func RenderRecord(r Record) *element.Node {
	rows := element.New("div", account.DetailsContainerClass)
	for _, d := range r.Details() {
		rows.AppendChild(renderRow(d, true))
	}
	content := element.New("div", account.ContentClass).Build(
		element.New("div", account.TitleContainerClass).Build(
			field(account.TitleNameClass, "Name", r.Name, true),
		),
		rows,
		hidden(button(account.DetailsAddRowClass, "+ row")),
	)
	buttons := element.New("div", ButtonsClass).Build(
		button(account.ChangeButtonClass, "Edit"),
		hidden(button(account.SaveButtonClass, "Save")),
		hidden(button(account.RollbackButtonClass, "Cancel")),
		hidden(button(account.DeleteButtonClass, "Delete")),
		button(account.ExportTXTClass, "TXT"),
		button(account.ExportJSONClass, "JSON"),
		button(account.ExportCSVClass, "CSV"),
	)
	container := element.New("div", account.ContainerClass).
		WithAttr(element.AttrID, strconv.FormatInt(r.ID, 10)).
		Build(content, buttons)
	return element.New("div", account.BaseClass).Build(container)
}

// RowTemplate is the blank row cloned when a detail row is added.
func RowTemplate() *element.Node {
	return renderRow(Detail{}, true)
}

// RenderCreateForm builds the create-account form, hidden until its popup opens.
func RenderCreateForm() *element.Node {
	content := element.New("div", account.ContentClass).Build(
		element.New("div", account.TitleContainerClass).Build(
			element.New("p", CreateTitleClass).WithText("New account"),
			field(account.TitleNameClass, "Name", "", false),
		),
		element.New("div", account.DetailsContainerClass).Build(renderRow(Detail{}, false)),
		button(account.DetailsAddRowClass, "+ row"),
		button(account.CreateButtonClass, "Create"),
	)
	container := element.New("div", account.ContainerClass).Build(
		content,
		button(CreateCloseClass, "Close"),
	)
	return element.New("div", account.BaseClass, account.CreateBaseClass).Build(container)
}

func renderHeader() *element.Node {
	return element.New("div", HeaderClass).Build(
		button(AddLinkClass, "New account"),
		button(account.ExportTXTClass, "Export TXT"),
		button(account.ExportJSONClass, "Export JSON"),
		button(account.ExportCSVClass, "Export CSV"),
	)
}

func renderRow(d Detail, readonly bool) *element.Node {
	label := d.Key
	if label == "" {
		label = defaultDetailLabel
	}
	return element.New("div", account.DetailsContentClass).Build(
		field(account.DetailNameClass, label, d.Key, readonly),
		field(account.DetailValueClass, "Value", d.Value, readonly),
	)
}

func field(class, placeholder, value string, readonly bool) *element.Node {
	in := element.New("input", class).WithValue(value).WithAttr(AttrPlaceholder, placeholder)
	if readonly {
		in.SetAttr(element.AttrReadonly, "")
	}
	return element.New("div", FieldClass).Build(in)
}

func button(class, text string) *element.Node {
	return element.New("button", class).WithText(text)
}

func hidden(n *element.Node) *element.Node {
	element.Hide(n, true)
	return n
}

// Fetch loads the records matching search ("" or "*" for all).
func Fetch(ctx context.Context, tr transport.Transport, search string) ([]Record, error) {
	path := "/accounts"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	resp, err := tr.Send(ctx, http.MethodGet, path, nil)
	if err := transport.Check(resp, err); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	var records []Record
	if err := resp.JSON(&records); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	return records, nil
}
