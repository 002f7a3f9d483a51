// 1. Register an application at: https://developer.spotify.com/my-applications/
//
// 2. Set the SPOTIFY_ID environment variable to the client ID you got in step 1.
// 3. Set the SPOTIFY_SECRET environment variable to the client secret from step 1.
//
// This package uses the client-credentials flow: no user login, no
// callback server. It can only read public playlists.
package spotify

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrAuthentication marks invalid or expired API credentials.
	ErrAuthentication = errors.New("spotify: authentication failed")

	// ErrNotFound marks an unknown or inaccessible playlist id.
	ErrNotFound = errors.New("spotify: playlist not found")
)

// pageSize is the Spotify API maximum per request.
const pageSize = 50

// playlistAPI is the slice of *spotify.Client the fetcher needs.
// Narrowing it here lets tests swap in a fake without a network.
type playlistAPI interface {
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
}

// Fetcher retrieves the raw track entries of one playlist.
type Fetcher struct {
	api    playlistAPI
	logger *zap.SugaredLogger
}

// NewFetcher exchanges the client credentials for an access token and
// returns a ready-to-use Fetcher. Transient network failures and rate
// limits are retried a bounded number of times by the underlying HTTP
// client; authentication failures are reported immediately.
func NewFetcher(ctx context.Context, clientID, clientSecret string, logger *zap.SugaredLogger) (*Fetcher, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.Wrap(ErrAuthentication, "client ID and secret must be set")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil
	ctx = context.WithValue(ctx, oauth2.HTTPClient, retryClient.StandardClient())

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := conf.Token(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrAuthentication, "token exchange: %v", err)
	}

	client := spotify.New(spotifyauth.New().Client(ctx, token))
	logger.Infow("authenticated with Spotify", "flow", "client_credentials")
	return &Fetcher{api: client, logger: logger}, nil
}

// PlaylistItems fetches every raw entry of the playlist, following the
// limit/offset pagination until the last page.
func (f *Fetcher) PlaylistItems(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error) {
	var items []spotify.PlaylistItem
	offset := 0

	for {
		page, err := f.api.GetPlaylistItems(
			ctx,
			spotify.ID(playlistID),
			spotify.Limit(pageSize),
			spotify.Offset(offset),
		)
		if err != nil {
			return nil, errors.Wrapf(classify(err), "getting items of playlist %s", playlistID)
		}

		items = append(items, page.Items...)
		f.logger.Debugw("fetched playlist page", "playlist", playlistID, "offset", offset, "items", len(page.Items))

		if len(page.Items) < pageSize {
			break
		}
		offset += pageSize
	}

	return items, nil
}

// classify maps Spotify API errors onto the fetcher's error taxonomy.
// Anything that is not an authentication or not-found failure passes
// through unchanged.
func classify(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Wrap(ErrAuthentication, apiErr.Message)
		case http.StatusNotFound:
			return errors.Wrap(ErrNotFound, apiErr.Message)
		}
	}
	return err
}
