package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/catalog"
	"github.com/hongminglow/storefront-be/internal/storage/memory"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseAndApplySeed(t *testing.T) {
	f, err := os.Open("testdata/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	seed, err := ParseSeed(f)
	require.NoError(t, err)
	require.Len(t, seed.Categories, 2)
	require.Len(t, seed.Products, 3)

	ctx := context.Background()
	svc := catalog.NewService(memory.New())
	require.NoError(t, ApplySeed(ctx, svc, seed, quietLogger()))

	products, err := svc.ListProductsByCategory(ctx, "lighting")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "24.99", products[0].Price.String())
	assert.True(t, products[0].Availability)
	assert.False(t, products[1].Availability)
}

func TestParseSeedRejectsUnknownFields(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("categories:\n  - id: a\n    colour: red\n"))
	assert.Error(t, err)
}

func TestApplySeedRejectsBadPrice(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader("products:\n  - id: p1\n    title: Lamp\n    price: cheap\n"))
	require.NoError(t, err)
	err = ApplySeed(context.Background(), catalog.NewService(memory.New()), seed, quietLogger())
	assert.ErrorContains(t, err, "parse price")
}

func TestRootCommandWiresSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "seed", "sweep"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
