// Package account implements inline editing of rendered account records:
// the edit-session state machine, its rollback cache, the action buttons that
// mirror the session phase, deletion and the create-account form.
package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"acctdesk/internal/element"
)

// Marker classes the rendered account markup is expected to carry.
const (
	BaseClass      = "account"
	ContainerClass = "account__container"
	ContentClass   = "account__content"

	TitleContainerClass = "account-title__container"
	TitleNameClass      = "account-title__name"

	DetailsContainerClass = "account-details__container"
	DetailsContentClass   = "account-details__content"
	DetailsAddRowClass    = "account-details__add-row-button"
	DetailNameClass       = "account-detail__name"
	DetailValueClass      = "account-detail__value"
	RemoveRowClass        = "remove-row"

	ChangeButtonClass   = "change-button"
	SaveButtonClass     = "save-button"
	RollbackButtonClass = "rollback-button"
	DeleteButtonClass   = "delete-button"

	ExportTXTClass  = "txt-export-button"
	ExportJSONClass = "json-export-button"
	ExportCSVClass  = "csv-export-button"

	CreateBaseClass   = "account-create"
	CreateButtonClass = "account-create__button"
	CreatedLabelClass = "account-created"

	ItemChangeClass = "item-change"
	EditClass       = "account-edit"
)

var (
	// ErrMalformedID is returned when a record container's id attribute is not a positive integer.
	ErrMalformedID = errors.New("malformed account id")
	// ErrMissingElement is returned when required markup is absent.
	ErrMissingElement = errors.New("missing element")
)

// ParseRecordID reads the numeric record identifier from a container's id attribute.
func ParseRecordID(container element.Element) (int64, error) {
	if container == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingElement, ContainerClass)
	}
	raw := strings.TrimSpace(container.ID())
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return id, nil
}

// Inputs returns every input under root in document order.
func Inputs(root element.Element) []element.Element {
	if root == nil {
		return nil
	}
	return root.QueryAll("input")
}

func query(root element.Element, class string) element.Element {
	if root == nil {
		return nil
	}
	return root.Query("." + class)
}
