// Package services defines the [Catalog] interface for the remote music catalog and implements it for NetEase Cloud Music.
//
// # Catalog Interface
//
// The lyric pipeline only needs three read operations: search by free text, song detail by ID and lyrics by ID.
// Everything above this package works against [Catalog], so tests substitute an in-memory double.
//
// # NetEase Implementation
//
// [NeteaseService] calls the public web API:
//   - GET /api/search/pc?s=<query>&type=1&offset=0&limit=<n>
//   - GET /api/song/detail/?ids=[<id>]
//   - GET /api/song/lyric?id=<id>&lv=1&kv=1&tv=1
//
// Every request carries a desktop browser User-Agent, the site Referer and the configured Cookie.
// The cookie is sent verbatim; it is never parsed or rewritten.
//
// # Pacing
//
// [PacedCatalog] wraps any Catalog and waits on a shared [rate.Limiter] before every call,
// so consecutive requests are spaced by at least the configured interval whatever their outcome.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : non-2xx status, undecodable body or API code other than 200
//   - [shared.ErrTrackNotFound] : detail lookup returned no song
package services
