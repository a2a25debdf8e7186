// Package post builds the actions that act on a single media item: liking,
// commenting, saving, editing its caption and uploading a new one.
package post

import (
	"fmt"
	"instauto/pkg/instauto/actions"
	"os"
)

const defaultModuleName = "feed_timeline"
const defaultRadioType = "wifi-none"

type Like struct {
	actions.Reserved
	MediaID    string `json:"media_id"`
	ModuleName string `json:"module_name"`
	RadioType  string `json:"radio_type"`
}

func NewLike(mediaID string) (Like, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return Like{}, err
	}
	return Like{
		MediaID:    mediaID,
		ModuleName: defaultModuleName,
		RadioType:  defaultRadioType,
	}, nil
}

type Unlike struct {
	actions.Reserved
	MediaID    string `json:"media_id"`
	ModuleName string `json:"module_name"`
	RadioType  string `json:"radio_type"`
}

func NewUnlike(mediaID string) (Unlike, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return Unlike{}, err
	}
	return Unlike{
		MediaID:    mediaID,
		ModuleName: defaultModuleName,
		RadioType:  defaultRadioType,
	}, nil
}

// Save adds the media to the account's saved collection.
type Save struct {
	actions.Reserved
	MediaID    string `json:"media_id"`
	ModuleName string `json:"module_name"`
	RadioType  string `json:"radio_type"`
}

func NewSave(mediaID string) (Save, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return Save{}, err
	}
	return Save{
		MediaID:    mediaID,
		ModuleName: defaultModuleName,
		RadioType:  defaultRadioType,
	}, nil
}

type Comment struct {
	actions.Reserved
	MediaID         string `json:"media_id"`
	CommentText     string `json:"comment_text"`
	ContainerModule string `json:"container_module"`
	DeliveryClass   string `json:"delivery_class"`
	RadioType       string `json:"radio_type"`
	// generated at submission
	IdempotenceToken string `json:"idempotence_token,omitempty"`
}

func NewComment(mediaID, text string) (Comment, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return Comment{}, err
	}
	if err := actions.NotEmpty("comment_text", text); err != nil {
		return Comment{}, err
	}
	return Comment{
		MediaID:         mediaID,
		CommentText:     text,
		ContainerModule: "comments_v2",
		DeliveryClass:   "organic",
		RadioType:       defaultRadioType,
	}, nil
}

type UpdateCaption struct {
	actions.Reserved
	MediaID     string `json:"media_id"`
	CaptionText string `json:"caption_text"`
}

// NewUpdateCaption accepts an empty caption, which clears it.
func NewUpdateCaption(mediaID, caption string) (UpdateCaption, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return UpdateCaption{}, err
	}
	return UpdateCaption{MediaID: mediaID, CaptionText: caption}, nil
}

type RetrieveByID struct {
	MediaID string
}

func NewRetrieveByID(mediaID string) (RetrieveByID, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return RetrieveByID{}, err
	}
	return RetrieveByID{MediaID: mediaID}, nil
}

type Likers struct {
	MediaID string
}

func NewLikers(mediaID string) (Likers, error) {
	if err := actions.MediaID("media_id", mediaID); err != nil {
		return Likers{}, err
	}
	return Likers{MediaID: mediaID}, nil
}

type Location struct {
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Address        string  `json:"address,omitempty"`
	ExternalSource string  `json:"external_source,omitempty"`
	ExternalID     string  `json:"external_id,omitempty"`
}

// UploadDevice is the device block of the configure call, it defaults to the
// client's device profile.
type UploadDevice struct {
	Manufacturer   string `json:"manufacturer"`
	Model          string `json:"model"`
	AndroidVersion int    `json:"android_version"`
	AndroidRelease string `json:"android_release"`
}

type UploadOptions struct {
	Caption  string
	Location *Location
	Device   *UploadDevice
	// jpeg quality reported to the platform, defaults to 70
	Quality int
	// defaults to image/jpeg
	EntityType string
}

// Upload publishes a new photo, it is sent as a raw upload followed by a
// configure call.
type Upload struct {
	Caption    string
	Location   *Location
	Device     *UploadDevice
	Quality    int
	EntityType string

	image []byte
}

const defaultQuality = 70

func NewUpload(image []byte, opts UploadOptions) (Upload, error) {
	if len(image) == 0 {
		return Upload{}, actions.Invalid("image", "must not be empty")
	}
	quality := opts.Quality
	if quality == 0 {
		quality = defaultQuality
	}
	if quality < 1 || quality > 100 {
		return Upload{}, actions.Invalid("quality", "must be between 1 and 100")
	}
	if opts.Location != nil {
		if err := actions.NotEmpty("location.name", opts.Location.Name); err != nil {
			return Upload{}, err
		}
	}
	entityType := opts.EntityType
	if entityType == "" {
		entityType = "image/jpeg"
	}

	return Upload{
		Caption:    opts.Caption,
		Location:   opts.Location,
		Device:     opts.Device,
		Quality:    quality,
		EntityType: entityType,
		image:      image,
	}, nil
}

func NewUploadFromFile(path string, opts UploadOptions) (Upload, error) {
	if err := actions.NotEmpty("image_path", path); err != nil {
		return Upload{}, err
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, actions.Invalid("image_path", fmt.Sprintf("is not readable: %s", err.Error()))
	}
	return NewUpload(image, opts)
}

func (u Upload) Image() []byte {
	return u.image
}
