package session

import (
	"context"
	"testing"

	"github.com/jonathan/apply-agent/internal/browser/browsertest"
	"github.com/jonathan/apply-agent/internal/pacing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profile = "https://www.linkedin.com/in/pat"

func TestConnectRecruiter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(p *browsertest.Page) *browsertest.Element
		want    bool
		wantErr error
		clicked bool
	}{
		{
			name: "invitation pending",
			setup: func(p *browsertest.Page) *browsertest.Element {
				p.Add(selSecondaryButton, browsertest.NewElement("Message"), browsertest.NewElement("Pending"))
				return nil
			},
			want: true,
		},
		{
			name: "primary connect button",
			setup: func(p *browsertest.Page) *browsertest.Element {
				send := browsertest.NewElement("Send without a note")
				p.Add(selConnectPrimary, browsertest.NewElement("Connect"))
				p.Add(selSendNoNote, send)
				return send
			},
			want:    true,
			clicked: true,
		},
		{
			name: "secondary connect button",
			setup: func(p *browsertest.Page) *browsertest.Element {
				send := browsertest.NewElement("Send without a note")
				p.Add(selConnectPrimary, browsertest.NewElement("Message"))
				p.Add(selConnectSecond, browsertest.NewElement("Connect"))
				p.Add(selSendNoNote, send)
				return send
			},
			want:    true,
			clicked: true,
		},
		{
			name: "connect from more actions",
			setup: func(p *browsertest.Page) *browsertest.Element {
				send := browsertest.NewElement("Send without a note")
				p.Add(selMoreActions, browsertest.NewElement("More"))
				p.Add(selMenuItem, browsertest.NewElement("Save to PDF"), browsertest.NewElement("Connect"))
				p.Add(selSendNoNote, send)
				return send
			},
			want:    true,
			clicked: true,
		},
		{
			name: "already connected",
			setup: func(p *browsertest.Page) *browsertest.Element {
				p.Add(selMoreActions, browsertest.NewElement("More"))
				p.Add(selMenuItem, browsertest.NewElement("Remove Connection"))
				return nil
			},
			want: true,
		},
		{
			name: "no way to connect",
			setup: func(p *browsertest.Page) *browsertest.Element {
				p.Add(selMoreActions, browsertest.NewElement("More"))
				p.Add(selMenuItem, browsertest.NewElement("Report / Block"))
				return nil
			},
		},
		{
			name: "connect button hidden",
			setup: func(p *browsertest.Page) *browsertest.Element {
				button := browsertest.NewElement("Connect")
				button.Hidden = true
				p.Add(selConnectPrimary, button)
				return nil
			},
		},
		{
			name: "dialog without send button",
			setup: func(p *browsertest.Page) *browsertest.Element {
				p.Add(selConnectPrimary, browsertest.NewElement("Connect"))
				return nil
			},
			wantErr: ErrNoSendButton,
		},
		{
			name: "weekly invitation limit",
			setup: func(p *browsertest.Page) *browsertest.Element {
				send := browsertest.NewElement("Send without a note")
				p.Add(selConnectPrimary, browsertest.NewElement("Connect"))
				p.Add(selSendNoNote, send)
				p.Add(selInviteLimit, browsertest.NewElement("You’ve reached the weekly invitation limit"))
				return send
			},
			wantErr: ErrInviteLimit,
			clicked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := browsertest.NewPage("about:blank")
			page.Height = 900
			send := tt.setup(page)

			ok, err := ConnectRecruiter(ctx, page, pacing.None, nil, profile)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			}

			assert.Equal(t, []string{profile}, page.Navigations)
			if send != nil {
				assert.Equal(t, 1, send.Clicks)
			}
			if tt.clicked {
				assert.NotEmpty(t, page.Scrolls)
			}
		})
	}
}

func TestConnectRecruiter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectRecruiter(ctx, browsertest.NewPage(""), pacing.None, nil, profile)
	assert.ErrorIs(t, err, context.Canceled)
}
