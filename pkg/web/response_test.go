package web

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestBindingErrorMsg(t *testing.T) {
	type request struct {
		Title    string `validate:"required"`
		PageSize int32  `validate:"min=1,max=100"`
		Kind     string `validate:"oneof=a b"`
	}

	v := validator.New()

	testCases := []struct {
		name string
		req  request
		want string
	}{
		{
			name: "Required",
			req:  request{PageSize: 1, Kind: "a"},
			want: "Title field is required",
		},
		{
			name: "Min",
			req:  request{Title: "t", Kind: "a"},
			want: "PageSize field should be at least 1",
		},
		{
			name: "Max",
			req:  request{Title: "t", PageSize: 101, Kind: "a"},
			want: "PageSize field should be at most 100",
		},
		{
			name: "OneOf",
			req:  request{Title: "t", PageSize: 1, Kind: "c"},
			want: "Kind field should be one of [a b]",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			require.Error(t, err)
			require.Equal(t, tc.want, BindingErrorMsg(err))
		})
	}

	require.Equal(t, "invalid request", BindingErrorMsg(errors.New("unexpected EOF")))
}
