package instauto

import (
	"encoding/json"
	"fmt"
	"instauto/pkg/instauto/device"
	"net/http"
	"os"
	"path/filepath"
)

const report_save = "save"

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type saveFile struct {
	State         device.State      `json:"state"`
	DeviceProfile device.Profile    `json:"device_profile"`
	AppProfile    device.AppProfile `json:"app_profile"`
	Cookies       []savedCookie     `json:"cookies"`
}

// Save writes the session to path so a later NewClientFromFile can resume it
// without logging in again. The file holds credentials and is only readable
// by the owner.
func (c *Client) Save(path string) error {
	cookies := c.transport.Cookies()
	saved := make([]savedCookie, len(cookies))
	for i, cookie := range cookies {
		saved[i] = savedCookie{Name: cookie.Name, Value: cookie.Value}
	}

	buff, err := json.MarshalIndent(saveFile{
		State:         *c.state,
		DeviceProfile: c.device,
		AppProfile:    c.app,
		Cookies:       saved,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	// written next to the target and renamed so a crash never leaves a
	// truncated save file behind
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		c.tel.ReportBroken(report_save, err, path)
		return fmt.Errorf("save: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(buff)
	if err == nil {
		err = tmp.Chmod(0600)
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		c.tel.ReportBroken(report_save, err, path)
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// NewClientFromFile resumes the session saved at path. The state, device and
// app profile of the file take precedence over the ones in opts.
func NewClientFromFile(path string, opts ClientOptions) (*Client, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadState, err)
	}
	var saved saveFile
	err = json.Unmarshal(buff, &saved)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadState, path, err)
	}
	if saved.State.UUID == "" || saved.State.DeviceID == "" {
		return nil, fmt.Errorf("%w: %s: missing device identifiers", ErrLoadState, path)
	}
	if saved.DeviceProfile.Model == "" {
		return nil, fmt.Errorf("%w: %s: missing device profile", ErrLoadState, path)
	}

	opts.State = &saved.State
	opts.Device = &saved.DeviceProfile
	if saved.AppProfile.SignatureKey != "" {
		opts.App = &saved.AppProfile
	}
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, len(saved.Cookies))
	for i, cookie := range saved.Cookies {
		cookies[i] = &http.Cookie{Name: cookie.Name, Value: cookie.Value}
	}
	c.transport.SetCookies(cookies)

	return c, nil
}
