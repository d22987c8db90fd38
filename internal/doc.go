// Package chartfeed implements the data-acquisition core for pannable,
// zoomable time-series charts backed by a remote aggregation API.
//
// # Architecture
//
// The service is structured into several key packages:
//   - series: intervals, nullable samples, trace parameters, resolution selection
//   - segment: per-segment HTTP fetching and the bounded segment cache
//   - section: debounced loading of four-segment display sections
//   - window: display window extraction with boundary interpolation
//   - feed: the facade the rendering layer calls on every pan/zoom tick
//   - server: HTTP surface exposing assembled windows
//   - schedule: cron-driven cache prewarming
//
// Key Behaviors
//
//   - Resolution selection:
//     Segment lengths are power-of-two multiples of a per-trace minimum,
//     so boundaries realign across zoom levels and the cache stays
//     reusable.
//
//   - Debounced sections:
//     Continuous drag and zoom gestures only load the settled target
//     section; stale completions are dropped by identity, never
//     overwriting newer data.
//
//   - Wide data:
//     Extracted windows carry one interpolated point at each edge so a
//     rendered line reaches the visible boundary without jumping.
//
// Example Usage
//
//	f, _ := feed.New("outTemp", params, feed.Options{}, logger)
//	points, fut := f.RequestWide(iv)
//	if fut != nil {
//	    <-fut.Done()
//	    points, _ = fut.Result()
//	}
//
// For more information about specific packages, see their respective
// documentation.
package chartfeed
