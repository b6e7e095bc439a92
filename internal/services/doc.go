// Package services implements the HTTP clients for the two upstream systems of an import:
// the MusicBrainz release catalog ([MusicBrainzService]) and the Lidarr collection manager
// ([LidarrService]).
//
// # Transport
//
// Both clients are built on [APIService], a small JSON client bound to one base URL with
// a fixed header set (the Lidarr X-Api-Key, the MusicBrainz User-Agent). Clients are
// read-only after construction and shared by every concurrent import.
//
// # MusicBrainz
//
// [MusicBrainzService.ResolveBarcode] searches releases by barcode and extracts the
// first hit into [ReleaseMetadata]. Calls are throttled through a shared
// [rate.Limiter]; there are no retries.
//
// # Lidarr
//
// [Artist] and [Album] decode the typed fields the workflow joins on (id, foreign id,
// monitored) and keep the rest of the record, so a fetched record can be written back with
// PUT or embedded in an album creation payload without dropping fields.
//
// [LidarrService.CheckConfig] probes the root folder, quality profile and metadata
// profile endpoints and reports reachability and misconfiguration per endpoint.
//
// # Error Handling
//
// Every failed upstream call returns a [shared.UpstreamError]:
//   - transport failures (the wrapped error is kept)
//   - non-2xx statuses (status code and a truncated body)
//   - bodies that do not match the expected shape ([shared.ErrUnexpectedResponse])
//
// A barcode without catalog matches returns a [shared.NotFoundError].
package services
