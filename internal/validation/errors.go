package validation

import "acctdesk/internal/element"

// CreateError marks field as invalid and shows text in a label next to it.
// An existing label is replaced, so repeated calls never stack labels.
func CreateError(field element.Element, text string) {
	if field == nil {
		return
	}
	RemoveError(field)
	field.AddClass(ErrorInputClass)

	parent := field.Parent()
	if parent == nil {
		return
	}
	label := element.New("span", ErrorLabelClass).WithText(text)
	parent.AppendChild(label)
}

// RemoveError clears the error marker and label of field, if any.
func RemoveError(field element.Element) {
	if field == nil {
		return
	}
	field.RemoveClass(ErrorInputClass)
	parent := field.Parent()
	if parent == nil {
		return
	}
	for _, label := range parent.QueryAll("." + ErrorLabelClass) {
		if label.Parent() == parent {
			parent.RemoveChild(label)
		}
	}
}

func RemoveAll(fields []element.Element) {
	for _, f := range fields {
		RemoveError(f)
	}
}

// ErrorText returns the label text shown for field, or "" when it has none.
func ErrorText(field element.Element) string {
	if field == nil || field.Parent() == nil {
		return ""
	}
	for _, label := range field.Parent().Children() {
		if label.HasClass(ErrorLabelClass) {
			return label.Text()
		}
	}
	return ""
}

// HasError reports whether field is currently marked invalid.
func HasError(field element.Element) bool {
	return field != nil && field.HasClass(ErrorInputClass)
}
