package plan

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/vars"
)

func newTestResolver() *Resolver {
	store := vars.NewStore(vars.ScopeScenario)
	store.Set("orderId", 1042)
	env := config.NewEnvironment("qa", config.Properties{
		"Url":      "https://qa.example.test",
		"qa.admin": "root",
	})
	files := config.ParseFilePaths("filepaths.txt", `invoice = "testdata\invoice.pdf"`)
	return NewResolver(store, env, files)
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"order ${orderId}", "order 1042"},
		{"${env:Url}/orders/${ orderId }", "https://qa.example.test/orders/1042"},
		{"${env:admin}", "root"},
		{"${file:invoice}", "testdata/invoice.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Generators(t *testing.T) {
	r := newTestResolver()

	unique, err := r.Resolve("${uniqueString(5, 10)}")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(unique), 5)
	assert.LessOrEqual(t, len(unique), 10)

	email, err := r.Resolve("${email()}")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^test_[a-z0-9]{8,12}@test\.com$`), email)

	number, err := r.Resolve("${number(6)}")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), number)

	r.Register("const", func(args []string) (string, error) { return "fixed", nil })
	got, err := r.Resolve("${const()}")
	require.NoError(t, err)
	assert.Equal(t, "fixed", got)
}

func TestResolver_Errors(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		in      string
		wantErr string
	}{
		{"${missing}", "unresolved variable: missing"},
		{"${env:nope}", `environment property "nope" is not set`},
		{"${file:nope}", `"nope" not found`},
		{"${shout()}", "unknown function: shout"},
		{"${number(x)}", `argument "x" is not a number`},
		{"${uniqueString(5)}", "expected 2 arguments, got 1"},
		{"${uniqueString(9, 3)}", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := r.Resolve(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolver_NoFileLookup(t *testing.T) {
	r := NewResolver(vars.NewStore(vars.ScopeScenario), config.Environment{}, nil)

	_, err := r.Resolve("${file:invoice}")

	var argErr *config.ArgumentError
	assert.ErrorAs(t, err, &argErr)
}
