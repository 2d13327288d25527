package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront-be/internal/models"
	"github.com/hongminglow/storefront-be/internal/storage/storagetest"
)

func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Fatal("MONGO_URI is required")
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "storefront_test"
	}

	store, err := NewStore(context.Background(), uri, database)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	storagetest.Run(t, store)
}

func TestDecimal128RoundTrip(t *testing.T) {
	for _, in := range []string{"0", "0.1", "19.99", "-4.5", "123456789.000001"} {
		d := decimal.RequireFromString(in)
		enc, err := toDecimal128(d)
		require.NoError(t, err)
		out, err := fromDecimal128(enc)
		require.NoError(t, err)
		assert.True(t, d.Equal(out), "%s != %s", in, out)
	}
}

func TestItemDocsRoundTrip(t *testing.T) {
	items := []models.CartItem{{ProductID: "p1", Quantity: 3, Price: decimal.RequireFromString("2.50"), Total: decimal.RequireFromString("7.50"), Title: "Pin"}}
	docs, err := toItemDocs(items)
	require.NoError(t, err)
	back, err := fromItemDocs(docs)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "p1", back[0].ProductID)
	assert.Equal(t, 3, back[0].Quantity)
	assert.True(t, back[0].Total.Equal(items[0].Total))
	assert.Equal(t, "Pin", back[0].Title)
}
