package account

import (
	"context"
	"fmt"
	"slices"

	"acctdesk/internal/element"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
)

// Deps are the collaborators shared by every editor.
type Deps struct {
	Transport   transport.Transport
	Notifier    Notifier
	Log         logging.Logger
	RowTemplate element.Element
	// NewExporter builds the export collaborator for one record; may be nil.
	NewExporter func(base element.Element) ExportBinder
}

// NewEditor builds the editor for the record rendered under base.
func NewEditor(base element.Element, deps Deps) (*Editor, error) {
	container := query(base, ContainerClass)
	id, err := ParseRecordID(container)
	if err != nil {
		return nil, err
	}
	log := deps.Log.With("account_id", id)

	details := NewDetails(query(base, DetailsContainerClass), deps.RowTemplate)
	addRow := query(base, DetailsAddRowClass)
	details.BindRowAddButton(addRow)

	extractor := NewExtractor(query(base, TitleNameClass), details)

	e := &Editor{
		id:       id,
		base:     base,
		changer:  NewChangeManager(base, id, details, extractor, deps.Transport, deps.Log),
		remover:  NewRemover(id, deps.Transport, deps.Notifier, deps.Log),
		log:      log,
		change:   query(container, ChangeButtonClass),
		save:     query(container, SaveButtonClass),
		rollback: query(container, RollbackButtonClass),
		del:      query(container, DeleteButtonClass),
		exports: [3]element.Element{
			query(container, ExportTXTClass),
			query(container, ExportJSONClass),
			query(container, ExportCSVClass),
		},
	}
	e.buttons = NewButtons(container, e.change, e.save, e.rollback, e.del, addRow, e.exports[:]...)
	if deps.NewExporter != nil {
		e.exporter = deps.NewExporter(base)
	}
	return e, nil
}

// Registry holds one initialized editor per rendered record, keyed by id.
type Registry struct {
	editors map[int64]*Editor
	order   []int64
}

// NewRegistry scans root for record bases and builds and initializes an
// editor for each. Create-form bases are skipped. Malformed or duplicate ids
// fail the whole scan.
func NewRegistry(ctx context.Context, root element.Element, deps Deps) (*Registry, error) {
	r := &Registry{editors: map[int64]*Editor{}}
	for _, base := range root.QueryAll("." + BaseClass) {
		if base.HasClass(CreateBaseClass) {
			continue
		}
		e, err := NewEditor(base, deps)
		if err != nil {
			return nil, fmt.Errorf("bind account: %w", err)
		}
		if _, dup := r.editors[e.ID()]; dup {
			return nil, fmt.Errorf("bind account: %w: duplicate id %d", ErrMalformedID, e.ID())
		}
		e.Init(ctx)
		r.editors[e.ID()] = e
		r.order = append(r.order, e.ID())
	}
	return r, nil
}

func (r *Registry) Editor(id int64) (*Editor, bool) {
	e, ok := r.editors[id]
	return e, ok
}

// IDs returns the record ids in document order.
func (r *Registry) IDs() []int64 { return slices.Clone(r.order) }

func (r *Registry) Len() int { return len(r.editors) }
