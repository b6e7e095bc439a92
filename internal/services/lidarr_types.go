package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/desertthunder/scanarr/internal/shared"
)

// Artist is a Lidarr artist record.
//
// The typed fields are the ones the workflow reads or writes. Every other field
// of the record is kept as decoded and written back unchanged by [Artist.MarshalJSON],
// so a fetched record can be embedded in another payload without losing data.
type Artist struct {
	ID              int
	ArtistName      string
	ForeignArtistID string
	Monitored       bool
	MonitorNewItems string

	raw map[string]any
}

// Album is a Lidarr album record. Unknown fields round-trip like [Artist].
type Album struct {
	ID             int
	ArtistID       int
	Title          string
	ForeignAlbumID string
	Monitored      bool

	raw map[string]any
}

// AddArtistRequest is the POST /artist payload.
type AddArtistRequest struct {
	ArtistName        string           `json:"artistName"`
	ForeignArtistID   string           `json:"foreignArtistId"`
	RootFolderPath    string           `json:"rootFolderPath"`
	QualityProfileID  int              `json:"qualityProfileId"`
	MetadataProfileID int              `json:"metadataProfileId"`
	Monitored         bool             `json:"monitored"`
	MonitorNewItems   string           `json:"monitorNewItems"`
	AddOptions        ArtistAddOptions `json:"addOptions"`
}

// ArtistAddOptions controls what Lidarr does right after an artist is added.
type ArtistAddOptions struct {
	SearchForMissingAlbums bool `json:"searchForMissingAlbums"`
}

// AddAlbumRequest is the POST /album payload. Artist must be the artist's full record.
type AddAlbumRequest struct {
	ArtistID       int             `json:"artistId"`
	Artist         *Artist         `json:"artist"`
	ForeignAlbumID string          `json:"foreignAlbumId"`
	Title          string          `json:"title"`
	Monitored      bool            `json:"monitored"`
	AddOptions     AlbumAddOptions `json:"addOptions"`
}

// AlbumAddOptions controls what Lidarr does right after an album is added.
type AlbumAddOptions struct {
	SearchForNewAlbum bool `json:"searchForNewAlbum"`
}

// Monitor new items policies.
const (
	MonitorNewItemsNone = "none"
	MonitorNewItemsAll  = "all"
)

// Field returns a field of the decoded record by its JSON name.
func (a *Artist) Field(name string) (any, bool) {
	v, ok := a.raw[name]
	return v, ok
}

func (a *Artist) UnmarshalJSON(data []byte) error {
	raw, err := decodeRecord("artist", data)
	if err != nil {
		return err
	}

	id, ok := intField(raw, "id")
	if !ok {
		return fmt.Errorf("%w: artist record has no id", shared.ErrUnexpectedResponse)
	}
	foreignID := stringField(raw, "foreignArtistId")
	if foreignID == "" {
		return fmt.Errorf("%w: artist %d has no foreignArtistId", shared.ErrUnexpectedResponse, id)
	}

	*a = Artist{
		ID:              id,
		ArtistName:      stringField(raw, "artistName"),
		ForeignArtistID: foreignID,
		Monitored:       boolField(raw, "monitored"),
		MonitorNewItems: stringField(raw, "monitorNewItems"),
		raw:             raw,
	}
	return nil
}

func (a Artist) MarshalJSON() ([]byte, error) {
	rec := cloneRecord(a.raw)
	setNonZero(rec, "id", a.ID)
	setNonZero(rec, "artistName", a.ArtistName)
	setNonZero(rec, "foreignArtistId", a.ForeignArtistID)
	setNonZero(rec, "monitorNewItems", a.MonitorNewItems)
	rec["monitored"] = a.Monitored
	return json.Marshal(rec)
}

// Field returns a field of the decoded record by its JSON name.
func (a *Album) Field(name string) (any, bool) {
	v, ok := a.raw[name]
	return v, ok
}

func (a *Album) UnmarshalJSON(data []byte) error {
	raw, err := decodeRecord("album", data)
	if err != nil {
		return err
	}

	id, ok := intField(raw, "id")
	if !ok {
		return fmt.Errorf("%w: album record has no id", shared.ErrUnexpectedResponse)
	}
	foreignID := stringField(raw, "foreignAlbumId")
	if foreignID == "" {
		return fmt.Errorf("%w: album %d has no foreignAlbumId", shared.ErrUnexpectedResponse, id)
	}
	artistID, _ := intField(raw, "artistId")

	*a = Album{
		ID:             id,
		ArtistID:       artistID,
		Title:          stringField(raw, "title"),
		ForeignAlbumID: foreignID,
		Monitored:      boolField(raw, "monitored"),
		raw:            raw,
	}
	return nil
}

func (a Album) MarshalJSON() ([]byte, error) {
	rec := cloneRecord(a.raw)
	setNonZero(rec, "id", a.ID)
	setNonZero(rec, "artistId", a.ArtistID)
	setNonZero(rec, "title", a.Title)
	setNonZero(rec, "foreignAlbumId", a.ForeignAlbumID)
	rec["monitored"] = a.Monitored
	return json.Marshal(rec)
}

func decodeRecord(kind string, data []byte) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s record is not an object: %v", shared.ErrUnexpectedResponse, kind, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s record is null", shared.ErrUnexpectedResponse, kind)
	}
	return raw, nil
}

func cloneRecord(raw map[string]any) map[string]any {
	if raw == nil {
		return make(map[string]any)
	}
	return maps.Clone(raw)
}

func setNonZero[T comparable](rec map[string]any, key string, v T) {
	var zero T
	if v != zero {
		rec[key] = v
	}
}

func intField(raw map[string]any, key string) (int, bool) {
	switch v := raw[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func boolField(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}
