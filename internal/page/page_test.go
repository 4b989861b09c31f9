package page

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
	"acctdesk/internal/transport/transporttest"
)

func str(s string) *string { return &s }

func TestRecordDetailsSorted(t *testing.T) {
	r := Record{Name: "Bob", Data: map[string]*string{"zip": str("1"), "city": nil, "phone": str("2")}}
	assert.Equal(t, []Detail{{Key: "city"}, {Key: "phone", Value: "2"}, {Key: "zip", Value: "1"}}, r.Details())
}

func TestRenderRecord(t *testing.T) {
	base := RenderRecord(Record{ID: 7, Name: "Bob", Data: map[string]*string{"phone": str("123")}})

	container := base.Query("." + account.ContainerClass)
	require.NotNil(t, container)
	id, err := account.ParseRecordID(container)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	inputs := account.Inputs(base)
	require.Len(t, inputs, 3)
	assert.Equal(t, []string{"Bob", "phone", "123"}, []string{inputs[0].Value(), inputs[1].Value(), inputs[2].Value()})
	for _, in := range inputs {
		assert.False(t, element.Mutable(in))
		assert.True(t, in.Parent().HasClass(FieldClass), "each input owns its field wrapper")
	}
	assert.False(t, element.Visible(base.Query("."+account.SaveButtonClass)))
	assert.True(t, element.Visible(base.Query("."+account.ChangeButtonClass)))
}

func TestRender(t *testing.T) {
	p := Render([]Record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	assert.Len(t, p.Results.QueryAll("."+account.BaseClass), 2)
	assert.True(t, p.Create.HasClass(account.CreateBaseClass))
	assert.NotNil(t, p.Header.Query("."+AddLinkClass))
	assert.Nil(t, p.Results.Query("."+EmptyResultClass))

	empty := Render(nil)
	assert.NotNil(t, empty.Results.Query("."+EmptyResultClass))
}

func TestRenderCreateForm_Editable(t *testing.T) {
	base := RenderCreateForm()
	for _, in := range account.Inputs(base) {
		assert.True(t, element.Mutable(in))
	}
}

func TestFetch(t *testing.T) {
	fake := transporttest.OK(`[{"id":3,"name":"Bob","data":{"phone":"1","note":null}}]`)
	records, err := Fetch(context.Background(), fake, "Bob Smith")
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, http.MethodGet, fake.Calls[0].Method)
	assert.Equal(t, "/accounts?search=Bob+Smith", fake.Calls[0].Path)
	require.Len(t, records, 1)
	assert.EqualValues(t, 3, records[0].ID)
	assert.Nil(t, records[0].Data["note"])
	assert.Equal(t, "1", *records[0].Data["phone"])

	_, err = Fetch(context.Background(), transporttest.Failing(http.StatusInternalServerError), "")
	assert.Error(t, err)
	_, err = Fetch(context.Background(), transporttest.OK("not json"), "")
	assert.Error(t, err)
}
