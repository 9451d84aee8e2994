// NetEase Cloud Music [Catalog] implementation
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

const (
	DefaultNeteaseBaseURL = "https://music.163.com"
	DefaultNeteaseReferer = "https://music.163.com/"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultCookie         = "os=pc; appver=2.9.7;"
)

// NeteaseArtist is an artist entry in NetEase song payloads.
type NeteaseArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type neteaseAlbum struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NeteaseSong is the song shape shared by the search and detail endpoints.
type NeteaseSong struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Artists  []NeteaseArtist `json:"artists"`
	Album    *neteaseAlbum   `json:"album"`
	Duration int64           `json:"duration"` // milliseconds
}

type neteaseSearchResponse struct {
	Code   int `json:"code"`
	Result struct {
		Songs []NeteaseSong `json:"songs"`
	} `json:"result"`
}

type neteaseDetailResponse struct {
	Code  int           `json:"code"`
	Songs []NeteaseSong `json:"songs"`
}

type neteaseLyric struct {
	Lyric string `json:"lyric"`
}

type neteaseLyricResponse struct {
	Code    int           `json:"code"`
	Lrc     *neteaseLyric `json:"lrc"`
	Tlyric  *neteaseLyric `json:"tlyric"`
	NoLyric bool          `json:"nolyric"`
}

// NeteaseOpts configures a [NeteaseService].
type NeteaseOpts struct {
	BaseURL    string
	Cookie     string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NeteaseService implements [Catalog] for the NetEase Cloud Music web API.
type NeteaseService struct {
	baseURL    string
	cookie     string
	userAgent  string
	httpClient *http.Client
}

// NewNeteaseService creates a NetEase catalog client.
//
// Empty options fall back to the public site URL, a desktop Chrome User-Agent, the anonymous desktop cookie
// and a client with a 10 second timeout.
func NewNeteaseService(opts NeteaseOpts) *NeteaseService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNeteaseBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Cookie == "" {
		opts.Cookie = DefaultCookie
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &NeteaseService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		cookie:     opts.Cookie,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
	}
}

// Name returns the service name.
func (n *NeteaseService) Name() string {
	return "NetEase Cloud Music"
}

func (n *NeteaseService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	apiURL := n.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Referer", DefaultNeteaseReferer)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if n.cookie != "" {
		req.Header.Set("Cookie", n.cookie)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: request failed: %v", shared.ErrTimeout, err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: netease returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

func checkCode(code int) error {
	if code != http.StatusOK {
		return fmt.Errorf("%w: netease returned code %d", shared.ErrAPIRequest, code)
	}
	return nil
}

// Search queries songs matching query.
//
// Calls GET /api/search/pc with type=1 (songs).
func (n *NeteaseService) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("s", query)
	params.Set("type", "1")
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(limit))

	var resp neteaseSearchResponse
	if err := n.doRequest(ctx, "/api/search/pc", params, &resp); err != nil {
		return nil, err
	}
	if err := checkCode(resp.Code); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(resp.Result.Songs))
	for _, s := range resp.Result.Songs {
		candidates = append(candidates, s.candidate())
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Detail fetches the song detail for id.
//
// Calls GET /api/song/detail/?ids=[id].
func (n *NeteaseService) Detail(ctx context.Context, id int64) (models.Candidate, error) {
	params := url.Values{}
	params.Set("ids", fmt.Sprintf("[%d]", id))

	var resp neteaseDetailResponse
	if err := n.doRequest(ctx, "/api/song/detail/", params, &resp); err != nil {
		return models.Candidate{}, err
	}
	if err := checkCode(resp.Code); err != nil {
		return models.Candidate{}, err
	}
	if len(resp.Songs) == 0 {
		return models.Candidate{}, fmt.Errorf("%w: song %d", shared.ErrTrackNotFound, id)
	}
	return resp.Songs[0].candidate(), nil
}

// Lyric fetches the original and translated lyrics for id.
//
// Calls GET /api/song/lyric?id=<id>&lv=1&kv=1&tv=1.
func (n *NeteaseService) Lyric(ctx context.Context, id int64) (models.LyricPayload, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))
	params.Set("lv", "1")
	params.Set("kv", "1")
	params.Set("tv", "1")

	var resp neteaseLyricResponse
	if err := n.doRequest(ctx, "/api/song/lyric", params, &resp); err != nil {
		return models.LyricPayload{}, err
	}
	if err := checkCode(resp.Code); err != nil {
		return models.LyricPayload{}, err
	}
	if resp.NoLyric {
		return models.LyricPayload{}, fmt.Errorf("%w: song %d is instrumental", shared.ErrNoLyrics, id)
	}

	var payload models.LyricPayload
	if resp.Lrc != nil {
		payload.Primary = strings.TrimSpace(resp.Lrc.Lyric)
	}
	if resp.Tlyric != nil {
		payload.Translated = strings.TrimSpace(resp.Tlyric.Lyric)
	}
	return payload, nil
}

func (s NeteaseSong) candidate() models.Candidate {
	c := models.Candidate{
		ID:         s.ID,
		Title:      s.Name,
		Artist:     JoinArtists(s.Artists),
		DurationMS: s.Duration,
	}
	if s.Album != nil {
		c.Album = s.Album.Name
	}
	return c
}

// JoinArtists joins non-empty artist names with " & ".
func JoinArtists(artists []NeteaseArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, " & ")
}
