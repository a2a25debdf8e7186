package post

import (
	"context"
	"encoding/json"
	"fmt"
	"instauto/internal/components/chrono"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/transport"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/mazen160/go-random"
)

const (
	report_upload_rupload   = "upload.rupload"
	report_upload_configure = "upload.configure"
)

// DefaultUploadURL is the host rupload requests are sent to, it is not under
// the versioned api path.
const DefaultUploadURL = "https://i.instagram.com/"

type Options struct {
	// defaults to DefaultUploadURL
	UploadURL string
	Chrono    chrono.API
	Telemetry telemetry.API
}

type Module struct {
	r         actions.Requester
	uploadURL string
	chrono    chrono.API
	tel       telemetry.API
}

func New(r actions.Requester, opts Options) Module {
	if opts.UploadURL == "" {
		opts.UploadURL = DefaultUploadURL
	}
	if !strings.HasSuffix(opts.UploadURL, "/") {
		opts.UploadURL += "/"
	}
	if opts.Chrono == nil {
		opts.Chrono = chrono.StandardImpl{}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	return Module{
		r:         r,
		uploadURL: opts.UploadURL,
		chrono:    opts.Chrono,
		tel:       telemetry.NewScopedAPI("post", opts.Telemetry),
	}
}

func (m Module) act(ctx context.Context, mediaID, action string, payload any) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("media/%s/%s/", mediaID, action),
		Method:   http.MethodPost,
		Data:     payload,
		Signed:   true,
	})
}

func (m Module) Like(ctx context.Context, obj Like) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	return m.act(ctx, obj.MediaID, "like", obj)
}

func (m Module) Unlike(ctx context.Context, obj Unlike) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	return m.act(ctx, obj.MediaID, "unlike", obj)
}

func (m Module) Save(ctx context.Context, obj Save) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	return m.act(ctx, obj.MediaID, "save", obj)
}

func (m Module) Comment(ctx context.Context, obj Comment) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	if obj.IdempotenceToken == "" {
		obj.IdempotenceToken = uuid.NewString()
	}
	return m.act(ctx, obj.MediaID, "comment", obj)
}

func (m Module) UpdateCaption(ctx context.Context, obj UpdateCaption) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	return m.act(ctx, obj.MediaID, "edit_media", obj)
}

func (m Module) RetrieveByID(ctx context.Context, obj RetrieveByID) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("media/%s/info/", obj.MediaID),
		Method:   http.MethodGet,
	})
}

func (m Module) Likers(ctx context.Context, obj Likers) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("media/%s/likers/", obj.MediaID),
		Method:   http.MethodGet,
	})
}

type retryContext struct {
	NumStepAutoRetry   int `json:"num_step_auto_retry"`
	NumReupload        int `json:"num_reupload"`
	NumStepManualRetry int `json:"num_step_manual_retry"`
}

type imageCompression struct {
	LibName    string `json:"lib_name"`
	LibVersion string `json:"lib_version"`
	Quality    string `json:"quality"`
}

// every value of the rupload params is itself a string, nested objects are
// json encoded twice
type ruploadParams struct {
	RetryContext     string `json:"retry_context"`
	MediaType        string `json:"media_type"`
	XsharingUserIDs  string `json:"xsharing_user_ids"`
	UploadID         string `json:"upload_id"`
	ImageCompression string `json:"image_compression"`
}

func encodeString(v any) (string, error) {
	buff, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(buff), nil
}

func newRuploadParams(uploadID string, quality int) (string, error) {
	retry, err := encodeString(retryContext{})
	if err != nil {
		return "", err
	}
	compression, err := encodeString(imageCompression{
		LibName:    "moz",
		LibVersion: "3.1.m",
		Quality:    strconv.Itoa(quality),
	})
	if err != nil {
		return "", err
	}
	return encodeString(ruploadParams{
		RetryContext:     retry,
		MediaType:        "1",
		XsharingUserIDs:  "[]",
		UploadID:         uploadID,
		ImageCompression: compression,
	})
}

type configurePayload struct {
	actions.Reserved
	DeviceID         string       `json:"device_id"`
	UploadID         string       `json:"upload_id"`
	Caption          string       `json:"caption"`
	SourceType       string       `json:"source_type"`
	TimezoneOffset   string       `json:"timezone_offset"`
	DisableComments  string       `json:"disable_comments"`
	CameraPosition   string       `json:"camera_position"`
	Device           UploadDevice `json:"device"`
	Location         *Location    `json:"location,omitempty"`
	CreationLoggerID string       `json:"creation_logger_session_id"`
}

// Upload sends the image bytes to rupload, then configures them as a new
// post. If the rupload call fails or is rejected its response is returned
// and configure is not attempted, so a non-2xx result from Upload always
// carries the rupload status, never a configure one.
func (m Module) Upload(ctx context.Context, obj Upload) (*resty.Response, error) {
	session := m.r.Session()
	now := m.chrono.Now()

	uploadID := strconv.FormatInt(now.UnixMilli(), 10)
	suffix, err := random.IntRange(1_000_000_000, 9_999_999_999)
	if err != nil {
		return nil, fmt.Errorf("upload: entity name: %w", err)
	}
	entityName := fmt.Sprintf("%s_0_%d", uploadID, suffix)
	waterfallID := uuid.NewString()

	params, err := newRuploadParams(uploadID, obj.Quality)
	if err != nil {
		return nil, fmt.Errorf("upload: rupload params: %w", err)
	}

	res, err := m.r.Do(ctx, transport.Request{
		Endpoint: m.uploadURL + "rupload_igphoto/" + entityName,
		Method:   http.MethodPost,
		Body:     obj.image,
		Headers: map[string]string{
			"Content-Type":               "application/octet-stream",
			"X-FB-Photo-Waterfall-Id":    waterfallID,
			"X-Entity-Length":            strconv.Itoa(len(obj.image)),
			"X-Entity-Name":              entityName,
			"X-Entity-Type":              obj.EntityType,
			"X-Instagram-Rupload-Params": params,
			"Offset":                     "0",
			"Scene_capture_type":         "standard",
			"Creation_logger_session_id": session.SessionID,
		},
	})
	if err != nil {
		m.tel.ReportBroken(report_upload_rupload, err, entityName)
		return res, fmt.Errorf("upload: %w", err)
	}
	if !res.IsSuccess() {
		m.tel.ReportWarning(report_upload_rupload, "rejected", res.StatusCode(), entityName)
		return res, nil
	}

	dev := obj.Device
	if dev == nil {
		dev = &UploadDevice{
			Manufacturer:   session.Device.Manufacturer,
			Model:          session.Device.Model,
			AndroidVersion: session.Device.AndroidSDKVersion,
			AndroidRelease: session.Device.AndroidRelease,
		}
	}
	_, offset := now.Zone()
	payload := configurePayload{
		DeviceID:         session.DeviceID,
		UploadID:         uploadID,
		Caption:          obj.Caption,
		SourceType:       "4",
		TimezoneOffset:   strconv.Itoa(offset),
		DisableComments:  "0",
		CameraPosition:   "back",
		Device:           *dev,
		Location:         obj.Location,
		CreationLoggerID: session.SessionID,
	}
	payload.Fill(session)

	retry, err := encodeString(retryContext{})
	if err != nil {
		return nil, fmt.Errorf("upload: retry context: %w", err)
	}
	res, err = m.r.Do(ctx, transport.Request{
		Endpoint: "media/configure/",
		Method:   http.MethodPost,
		Data:     payload,
		Signed:   true,
		Headers:  map[string]string{"Retry_context": retry},
	})
	if err != nil {
		m.tel.ReportBroken(report_upload_configure, err, uploadID)
		return res, fmt.Errorf("upload: %w", err)
	}
	return res, nil
}
