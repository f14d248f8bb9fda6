package model_test

import (
	"testing"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/gt"
)

func TestParseScope(t *testing.T) {
	for _, s := range []string{"one_video", "seed_plus_tag", "seed_plus_channel", "any"} {
		scope, err := model.ParseScope(s)
		gt.NoError(t, err)
		gt.Equal(t, string(scope), s)
	}

	_, err := model.ParseScope("everything")
	gt.Error(t, err)
}

func TestScopePermissions(t *testing.T) {
	tests := []struct {
		scope       model.Scope
		tagSearch   bool
		channelScan bool
	}{
		{model.ScopeOneVideo, false, false},
		{model.ScopeSeedPlusTag, true, false},
		{model.ScopeSeedPlusChannel, false, true},
		{model.ScopeAny, true, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.scope), func(t *testing.T) {
			gt.Equal(t, tc.scope.PermitsTagSearch(), tc.tagSearch)
			gt.Equal(t, tc.scope.PermitsChannelScan(), tc.channelScan)
		})
	}
}
