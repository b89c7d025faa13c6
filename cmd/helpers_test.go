// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/browser/browsertest"
	"github.com/xkilldash9x/boost-cli/internal/config"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// quietConfig keeps test runs silent and skips the teardown pause.
const quietConfig = `
logger:
  level: fatal
orchestrator:
  teardown_delay: 0s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// execute runs a pristine command tree and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// useFakeBrowser routes the run command to session and restores the
// real launcher afterwards.
func useFakeBrowser(t *testing.T, session *browsertest.FakeSession) {
	t.Helper()
	origAcquire, origExecutor, origStore := acquireSession, newExecutor, openStore
	t.Cleanup(func() {
		acquireSession, newExecutor, openStore = origAcquire, origExecutor, origStore
	})

	acquireSession = func(context.Context, browser.Config, *zap.Logger) (browser.Session, error) {
		return session, nil
	}
	newExecutor = func(browser.Session) humanoid.Executor { return session }
}

// newsdeskTimeline serves a timeline with a pinned post, one post to
// retweet (101) and one already retweeted (102).
func newsdeskTimeline() *browsertest.FakeSession {
	session := browsertest.NewFakeSession()
	selectors := config.NewDefaultConfig().Content.Selectors

	timeline := session.Page("https://x.com/newsdesk").Add(selectors.Post, browsertest.NewElement())
	for _, href := range []string{"/newsdesk/status/100", "/newsdesk/status/101", "/newsdesk/status/102"} {
		timeline.Add(selectors.PostLink, browsertest.NewLink(href))
	}

	fresh := session.Page("https://x.com/newsdesk/status/101")
	confirm := browsertest.NewElement()
	retweet := browsertest.NewElement("innerHTML", "Repost")
	retweet.OnClick = func() { fresh.Add(selectors.Confirm, confirm) }
	fresh.Add(selectors.Post, browsertest.NewElement()).
		Add(selectors.Retweet, retweet).
		Add(selectors.Like, browsertest.NewElement())

	session.Page("https://x.com/newsdesk/status/102").
		Add(selectors.Post, browsertest.NewElement()).
		Add(selectors.Unretweet, browsertest.NewElement())
	return session
}
