package user

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDDecodesNumbersAndStrings(t *testing.T) {
	var got []User
	body := `[{"id": 17, "firstName": "Ana"}, {"id": "c0ffee", "firstName": "Luis"}, {"id": null}]`
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 3)
	assert.Equal(t, ID("17"), got[0].ID)
	assert.Equal(t, ID("c0ffee"), got[1].ID)
	assert.Equal(t, ID(""), got[2].ID)
}

func TestIDEncodesNumericIDsAsNumbers(t *testing.T) {
	out, err := json.Marshal([]ID{"42", "b7d1", ""})
	require.NoError(t, err)
	assert.JSONEq(t, `[42, "b7d1", ""]`, string(out))
}

func TestIDEncodingRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "number", in: `42`, want: `42`},
		{name: "negative number", in: `-7`, want: `-7`},
		{name: "numeric string", in: `"42"`, want: `42`},
		{name: "leading zeros", in: `"007"`, want: `"007"`},
		{name: "plus sign", in: `"+5"`, want: `"+5"`},
		{name: "negative zero", in: `"-0"`, want: `"-0"`},
		{name: "too large for int64", in: `"99999999999999999999"`, want: `"99999999999999999999"`},
		{name: "token", in: `"c0ffee"`, want: `"c0ffee"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))

			out, err := json.Marshal(id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))

			var back ID
			require.NoError(t, json.Unmarshal(out, &back))
			assert.Equal(t, id, back)
		})
	}
}

func TestUsersWithNonCanonicalIDsMarshal(t *testing.T) {
	var list []User
	body := `[{"id": "007", "firstName": "James"}, {"id": "+5", "firstName": "Plus"}, {"id": 3}]`
	require.NoError(t, json.Unmarshal([]byte(body), &list))

	out, err := json.Marshal(list)
	require.NoError(t, err)

	var back []User
	require.NoError(t, json.Unmarshal(out, &back))
	require.Len(t, back, 3)
	assert.Equal(t, ID("007"), back[0].ID)
	assert.Equal(t, ID("+5"), back[1].ID)
	assert.Equal(t, ID("3"), back[2].ID)
}

func TestActiveKeepsOrder(t *testing.T) {
	users := []User{
		{ID: "1", Status: true},
		{ID: "2", Status: false},
		{ID: "3", Status: true},
	}
	got := Active(users)
	require.Len(t, got, 2)
	assert.Equal(t, ID("1"), got[0].ID)
	assert.Equal(t, ID("3"), got[1].ID)
}

func TestWithoutRemovesOnlyMatch(t *testing.T) {
	users := []User{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := Without(users, "b")
	assert.Equal(t, []User{{ID: "a"}, {ID: "c"}}, got)

	got = Without(users, "zzz")
	assert.Equal(t, users, got)
}

func TestMatchesIgnoresCase(t *testing.T) {
	u := User{FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil"}
	assert.True(t, Matches(u, ""))
	assert.True(t, Matches(u, "hop"))
	assert.True(t, Matches(u, "NAVY"))
	assert.False(t, Matches(u, "lovelace"))

	assert.Len(t, Filter([]User{u, {FirstName: "Ada"}}, "gra"), 1)
}

func TestDraftValidate(t *testing.T) {
	require.NoError(t, Draft{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}.Validate())

	err := Draft{FirstName: "  ", LastName: "Lovelace"}.Validate()
	require.Error(t, err)

	var fe *FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Has(FieldFirstName))
	assert.True(t, fe.Has(FieldEmail))
	assert.False(t, fe.Has(FieldLastName))
	assert.Equal(t, "required fields missing: email, firstName", err.Error())
	assert.Equal(t, "required", (*fe)[FieldFirstName])
}

func TestDraftValidateReportsEveryBlankField(t *testing.T) {
	err := Draft{FirstName: "\t", LastName: " ", Email: ""}.Validate()

	var fe *FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldErrors{
		FieldFirstName: "required",
		FieldLastName:  "required",
		FieldEmail:     "required",
	}, *fe)
}

func TestDraftNormalized(t *testing.T) {
	d := Draft{FirstName: " Ada ", LastName: "Lovelace\t", Email: " ada@example.com"}.Normalized()
	assert.Equal(t, Draft{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, d)
}
