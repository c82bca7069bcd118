package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vim-fall/fall.vim/internal/core/item"
	"github.com/vim-fall/fall.vim/internal/core/pipeline"
)

func TestStaticItemSource_CollectReplaysItems(t *testing.T) {
	src := staticItemSource{items: []item.Item{{ID: 0, Value: "a"}, {ID: 1, Value: "b"}}}
	stream := src.Collect(context.Background(), pipeline.CollectParams{})

	var got []string
	for res := range stream {
		require.NoError(t, res.Err)
		got = append(got, res.Value.Value)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}
