// internal/engagement/engine_test.go
package engagement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/browser/browsertest"
	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/engagement"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

const item = content.Reference("https://x.com/newsdesk/status/1790000000000000001")

type postPage struct {
	session   *browsertest.FakeSession
	page      *browsertest.Page
	selectors content.Selectors
	retweet   *browsertest.FakeElement
	confirm   *browsertest.FakeElement
	like      *browsertest.FakeElement
}

// newPostPage serves a rendered, not yet retweeted post whose retweet
// control opens the confirmation menu when clicked.
func newPostPage() *postPage {
	session := browsertest.NewFakeSession()
	selectors := content.DefaultSelectors()
	p := &postPage{
		session:   session,
		page:      session.Page(item.String()),
		selectors: selectors,
		retweet:   browsertest.NewElement("innerHTML", `<span>Repost</span>`),
		confirm:   browsertest.NewElement(),
		like:      browsertest.NewElement(),
	}
	p.page.Add(selectors.Post, browsertest.NewElement())
	p.page.Add(selectors.Retweet, p.retweet)
	p.page.Add(selectors.Like, p.like)
	p.retweet.OnClick = func() { p.page.Add(selectors.Confirm, p.confirm) }
	return p
}

func (p *postPage) engine(likeProbability float64) *engagement.Engine {
	cfg := engagement.DefaultConfig()
	cfg.LikeProbability = likeProbability
	h := humanoid.NewTestHumanoid(p.session, 3)
	return engagement.NewEngine(p.session, h, p.selectors, cfg, zap.NewNop())
}

func TestEngageIfNeeded_EngagesWhenNotEngaged(t *testing.T) {
	p := newPostPage()

	out := p.engine(0).EngageIfNeeded(context.Background(), item)

	require.Equal(t, engagement.StatusEngagedNow, out.Status, "err: %v", out.Err)
	assert.NoError(t, out.Err)
	assert.Equal(t, item, out.Item)
	assert.Equal(t, 1, p.retweet.Clicks())
	assert.Equal(t, 1, p.confirm.Clicks())
	assert.Zero(t, p.session.QueryCount(p.selectors.Like))
	assert.False(t, out.Secondary.Attempted)
	assert.Equal(t, []string{item.String()}, p.session.Navigations)
	assert.NotEmpty(t, p.session.Scripts, "replies should be read before acting")
}

func TestEngageIfNeeded_LikeForcedQueriesOnce(t *testing.T) {
	p := newPostPage()

	out := p.engine(1).EngageIfNeeded(context.Background(), item)

	require.Equal(t, engagement.StatusEngagedNow, out.Status)
	assert.Equal(t, 1, p.session.QueryCount(p.selectors.Like))
	assert.Equal(t, 1, p.like.Clicks())
	assert.True(t, out.Secondary.Attempted)
	assert.True(t, out.Secondary.Succeeded)
	assert.NoError(t, out.Secondary.Err)
}

func TestEngageIfNeeded_LikeFailureIsSwallowed(t *testing.T) {
	t.Run("ControlAbsent", func(t *testing.T) {
		p := newPostPage()
		p.page.Remove(p.selectors.Like)

		out := p.engine(1).EngageIfNeeded(context.Background(), item)

		assert.Equal(t, engagement.StatusEngagedNow, out.Status)
		assert.NoError(t, out.Err)
		assert.True(t, out.Secondary.Attempted)
		assert.False(t, out.Secondary.Succeeded)
		assert.ErrorIs(t, out.Secondary.Err, engagement.ErrControlMissing)
	})

	t.Run("ClickFails", func(t *testing.T) {
		p := newPostPage()
		p.like.ClickErr = errors.New("element is not clickable")

		out := p.engine(1).EngageIfNeeded(context.Background(), item)

		assert.Equal(t, engagement.StatusEngagedNow, out.Status)
		assert.False(t, out.Secondary.Succeeded)
		assert.ErrorIs(t, out.Secondary.Err, p.like.ClickErr)
	})

	t.Run("QueryFails", func(t *testing.T) {
		p := newPostPage()
		boom := errors.New("query failed")
		p.session.FindErr[p.selectors.Like] = boom

		out := p.engine(1).EngageIfNeeded(context.Background(), item)

		assert.Equal(t, engagement.StatusEngagedNow, out.Status)
		assert.ErrorIs(t, out.Secondary.Err, boom)
	})
}

func TestEngageIfNeeded_AlreadyEngaged(t *testing.T) {
	t.Run("UndoControlPresent", func(t *testing.T) {
		p := newPostPage()
		p.page.Remove(p.selectors.Retweet)
		p.page.Add(p.selectors.Unretweet, browsertest.NewElement())

		out := p.engine(1).EngageIfNeeded(context.Background(), item)

		assert.Equal(t, engagement.StatusAlreadyEngaged, out.Status)
		assert.NoError(t, out.Err)
		assert.Zero(t, p.session.QueryCount(p.selectors.Confirm))
		assert.Zero(t, p.session.QueryCount(p.selectors.Like))
		assert.Zero(t, p.retweet.Clicks())
		assert.False(t, out.Secondary.Attempted)
	})

	t.Run("MarkerInControl", func(t *testing.T) {
		p := newPostPage()
		p.retweet.Attrs["innerHTML"] = `<div aria-label="Undo retweet">...</div>`

		out := p.engine(1).EngageIfNeeded(context.Background(), item)

		assert.Equal(t, engagement.StatusAlreadyEngaged, out.Status)
		assert.Zero(t, p.session.QueryCount(p.selectors.Confirm))
		assert.Zero(t, p.retweet.Clicks())
		assert.Zero(t, p.confirm.Clicks())
	})
}

func TestEngageIfNeeded_RetweetedReplyDoesNotMaskPost(t *testing.T) {
	p := newPostPage()
	// A reply below the post that was retweeted earlier.
	p.page.Add(p.selectors.Post, browsertest.NewElement())
	p.page.Add(p.selectors.Unretweet, browsertest.NewElement())

	out := p.engine(0).EngageIfNeeded(context.Background(), item)

	assert.Equal(t, engagement.StatusEngagedNow, out.Status)
	require.NoError(t, out.Err)
	assert.Equal(t, 1, p.retweet.Clicks())
	assert.Equal(t, 1, p.confirm.Clicks())
}

func TestEngageIfNeeded_UndoControlOnPostWinsOverReplies(t *testing.T) {
	p := newPostPage()
	p.page.Remove(p.selectors.Retweet)
	p.page.Add(p.selectors.Unretweet, browsertest.NewElement())
	reply := browsertest.NewElement("innerHTML", `<span>Repost</span>`)
	p.page.Add(p.selectors.Retweet, reply)

	out := p.engine(0).EngageIfNeeded(context.Background(), item)

	assert.Equal(t, engagement.StatusAlreadyEngaged, out.Status)
	assert.Zero(t, reply.Clicks())
	assert.Zero(t, p.session.QueryCount(p.selectors.Confirm))
}

func TestEngageIfNeeded_Errors(t *testing.T) {
	tests := []struct {
		name      string
		arrange   func(p *postPage)
		wantIs    error
		wantClick int // retweet control clicks
	}{
		{
			name:    "NavigationFails",
			arrange: func(p *postPage) { p.session.NavigateErr[item.String()] = errors.New("net::ERR_ABORTED") },
		},
		{
			name:    "PostNeverRenders",
			arrange: func(p *postPage) { p.page.Remove(p.selectors.Post) },
			wantIs:  browser.ErrWaitTimeout,
		},
		{
			name:    "RetweetControlMissing",
			arrange: func(p *postPage) { p.page.Remove(p.selectors.Retweet) },
			wantIs:  engagement.ErrControlMissing,
		},
		{
			name:      "ConfirmationNeverAppears",
			arrange:   func(p *postPage) { p.retweet.OnClick = nil },
			wantIs:    engagement.ErrControlMissing,
			wantClick: 1,
		},
		{
			name:    "RetweetClickFails",
			arrange: func(p *postPage) { p.retweet.ClickErr = errors.New("intercepted") },
		},
		{
			name:      "ConfirmClickFails",
			arrange:   func(p *postPage) { p.confirm.ClickErr = errors.New("detached") },
			wantClick: 1,
		},
		{
			name:    "ScrollScriptFails",
			arrange: func(p *postPage) { p.session.ScriptErr = errors.New("target crashed") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPostPage()
			tt.arrange(p)

			out := p.engine(1).EngageIfNeeded(context.Background(), item)

			assert.Equal(t, engagement.StatusError, out.Status)
			require.Error(t, out.Err)
			assert.NotEmpty(t, out.Reason())
			if tt.wantIs != nil {
				assert.ErrorIs(t, out.Err, tt.wantIs)
			}
			assert.Equal(t, tt.wantClick, p.retweet.Clicks())
			assert.Zero(t, p.confirm.Clicks())
			assert.False(t, out.Secondary.Attempted)
		})
	}
}

func TestEngageIfNeeded_Cancelled(t *testing.T) {
	p := newPostPage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.engine(1).EngageIfNeeded(ctx, item)
	assert.Equal(t, engagement.StatusError, out.Status)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestObserveState(t *testing.T) {
	p := newPostPage()
	require.NoError(t, p.session.Navigate(context.Background(), item.String()))
	e := p.engine(0)

	state, control, err := e.ObserveState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engagement.StateNotEngaged, state)
	assert.Same(t, p.retweet, control)

	p.page.Remove(p.selectors.Retweet)
	p.page.Add(p.selectors.Unretweet, browsertest.NewElement())
	state, control, err = e.ObserveState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engagement.StateEngaged, state)
	assert.Nil(t, control)
	assert.Equal(t, "engaged", state.String())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, engagement.DefaultConfig().Validate())

	cfg := engagement.DefaultConfig()
	cfg.ConfirmTimeout = 0
	assert.ErrorContains(t, cfg.Validate(), "engagement.confirm_timeout")

	cfg = engagement.DefaultConfig()
	cfg.LikeProbability = 2
	assert.ErrorContains(t, cfg.Validate(), "like_probability")

	assert.Equal(t, 5*time.Second, engagement.DefaultConfig().ConfirmTimeout)
}
