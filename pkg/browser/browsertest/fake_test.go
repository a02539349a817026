package browsertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cxvoice/pkg/browser"
)

func TestFake_ClickHooks(t *testing.T) {
	ctx := context.Background()
	accept := browser.CSS("#accept")
	banner := browser.CSS("#banner")

	f := New()
	f.OnClick(accept, func(f *Fake) {
		f.Show(banner)
		// Hooks registered while running take effect on the next click only.
		f.OnClick(accept, func(f *Fake) { f.Hide(banner) })
	})

	require.NoError(t, f.Click(ctx, accept))
	assert.True(t, f.Visible(banner))

	require.NoError(t, f.Click(ctx, accept))
	assert.False(t, f.Visible(banner))
	assert.Equal(t, 2, f.Clicks(accept))
}

func TestFake_ReloadHooks(t *testing.T) {
	ctx := context.Background()
	ready := browser.CSS("#ready")

	f := New().Show(ready)
	f.OnReload(func(f *Fake) { f.Hide(ready) })

	require.NoError(t, f.Goto(ctx, "https://desk.example.com", browser.NavigateOptions{}))
	require.NoError(t, f.Reload(ctx))
	assert.False(t, f.Visible(ready))
	assert.Equal(t, 1, f.Count(ActReload, browser.CSS("https://desk.example.com")))
}

func TestFake_StrictClick(t *testing.T) {
	hidden := browser.CSS("#hidden")
	f := New()
	f.Strict = true

	err := f.Click(context.Background(), hidden)
	var waitErr *browser.WaitError
	require.ErrorAs(t, err, &waitErr)
	assert.ErrorIs(t, err, ErrNotVisible)
	assert.NoError(t, f.Click(context.Background(), hidden, browser.Force()))
}
