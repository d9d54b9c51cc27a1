package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storyforge/storyforge/internal/domain"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range domain.ValidStatuses {
		assert.True(t, domain.IsValidStatus(s), "status %q should be valid", s)
	}

	assert.False(t, domain.IsValidStatus("shipped"))
	assert.False(t, domain.IsValidStatus(""))
	assert.False(t, domain.IsValidStatus("Done"))
}

func TestValidateStoryKey(t *testing.T) {
	valid := []string{
		"0-1-homepage",
		"1-2-login-page",
		"12-34-a",
		"3-1-OAuth2-Flow",
	}
	for _, key := range valid {
		assert.NoError(t, domain.ValidateStoryKey(key), "key %q", key)
	}

	invalid := []string{
		"",
		"1-2",
		"a-2-slug",
		"1-b-slug",
		"1-2-",
		"1-2-slug with spaces",
		"1-2-slug;rm -rf",
		"-1-2-slug",
	}
	for _, key := range invalid {
		err := domain.ValidateStoryKey(key)
		assert.ErrorIs(t, err, domain.ErrInvalidStoryKey, "key %q", key)
	}
}

func TestIsStoryKey(t *testing.T) {
	assert.True(t, domain.IsStoryKey("1-2-login"))
	assert.True(t, domain.IsStoryKey("0-1-multi-part-slug"))

	assert.False(t, domain.IsStoryKey("epic-1"))
	assert.False(t, domain.IsStoryKey("1-2"))
	assert.False(t, domain.IsStoryKey("a-2-slug"))
	assert.False(t, domain.IsStoryKey("1-b-slug"))
	assert.False(t, domain.IsStoryKey("notes"))
}

func TestStoryEpic(t *testing.T) {
	epic, ok := domain.StoryEpic("3-1-payments")
	assert.True(t, ok)
	assert.Equal(t, 3, epic)

	_, ok = domain.StoryEpic("payments")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Login Page", "login-page"},
		{"HTTPServer setup", "http-server-setup"},
		{"Add userProfile endpoint", "add-user-profile-endpoint"},
		{"Fix: broken (links)!", "fix-broken-links"},
		{"   spaced   out   ", "spaced-out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Slugify(tt.title), "title %q", tt.title)
	}
}

func TestNormalizeStoryKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"1-2-Login Flow", "1-2-login-flow"},
		{"1-2-LoginFlow", "1-2-login-flow"},
		{"1-2-login-flow", "1-2-login-flow"},
		{"0-1-Fix: broken (links)!", "0-1-fix-broken-links"},
		// Keys without the numeric prefix or with an empty title pass
		// through unchanged so validation can reject them.
		{"not-a-key", "not-a-key"},
		{"1-2-!!!", "1-2-!!!"},
		{"1-2", "1-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.NormalizeStoryKey(tt.key), "key %q", tt.key)
	}
}
