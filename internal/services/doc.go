// Package services finds videos for chart tracks and builds playlist links from them.
//
// # Search
//
// [SearchService] implements [Searcher] by requesting the public results page for a
// query and decoding the ytInitialData object the page assigns in an inline script.
// No API key or account is involved. Captured browser headers (see [shared.ParseCurlFile])
// may be attached to every request, and requests may be rate limited.
//
// # Extraction
//
// [ExtractCandidates] walks the decoded payload with a safe-navigation helper, so a
// layout change degrades to "no candidates" rather than a panic. Only videos lasting
// one to fifteen minutes are kept, and at most ten per page.
//
// # Matching
//
// [BestDurationMatch] picks the candidate whose length is closest to the track's.
// Ties keep the earlier candidate, which preserves the platform's relevance order.
//
// # Errors
//
// [SearchService.Candidates] reports typed errors from the shared package:
//   - [shared.ErrAPIRequest] : transport failure
//   - [shared.ErrSearchStatus] : non-200 response
//   - [shared.ErrMarkerNotFound] : page has no ytInitialData
//   - [shared.ErrPayloadParse] : ytInitialData is not valid JSON
//   - [shared.ErrNoCandidates] : nothing admissible on the page
//
// [SearchService.Resolve] swallows all of them into a nil result so that one failed
// lookup never aborts a batch.
package services
