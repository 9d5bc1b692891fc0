package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHashtags(t *testing.T) {
	cases := []struct {
		name         string
		text         string
		wantBody     string
		wantHashtags string
	}{
		{
			name:         "trailing hashtag line",
			text:         "Stay hydrated, stay sharp.\n\n#KangenWater #Wellness",
			wantBody:     "Stay hydrated, stay sharp.",
			wantHashtags: "#KangenWater #Wellness",
		},
		{
			name:         "inline hashtags",
			text:         "Drink more #water every day for better #health",
			wantBody:     "Drink more #water every day for better #health",
			wantHashtags: "#water #health",
		},
		{
			name:         "no hashtags",
			text:         "Just a plain post",
			wantBody:     "Just a plain post",
			wantHashtags: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, hashtags := splitHashtags(tc.text)
			assert.Equal(t, tc.wantBody, body)
			assert.Equal(t, tc.wantHashtags, hashtags)
		})
	}
}
