package instauto

import (
	"context"
	"encoding/json"
	"fmt"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/transport"
	"net/http"
	"strings"
)

const (
	report_login      = "login"
	report_login_sync = "login.sync"
)

const loginExperiments = "ig_android_fci_onboarding_friend_search,ig_android_device_detection_info_upload,ig_android_account_linking_upsell_universe,ig_android_direct_main_tab_universe_v2,ig_android_allow_account_switch_once_media_upload_finishes_universe,ig_android_sign_in_help_only_one_account_family_universe,ig_android_sms_retriever_backtest_universe,ig_android_direct_add_direct_to_android_native_photo_share_sheet,ig_android_spatial_account_switch_universe,ig_growth_android_profile_pic_prefill_with_fb_pic_2,ig_account_identity_logged_out_signals_global_holdout_universe,ig_android_prefill_main_account_username_on_login_screen_universe,ig_android_login_identifier_fuzzy_match,ig_android_mas_remove_close_friends_entrypoint,ig_android_shared_email_reg_universe,ig_android_video_render_codec_low_memory_gc,ig_android_custom_transitions_universe,ig_android_push_fcm,multiple_account_recovery_universe,ig_android_show_login_info_reminder_universe,ig_android_email_fuzzy_matching_universe,ig_android_one_tap_aymh_redesign_universe,ig_android_direct_send_like_from_notification,ig_android_suma_landing_page,ig_android_prefetch_debug_dialog,ig_android_smartlock_hints_universe,ig_android_black_out,ig_activation_global_discretionary_sms_holdout,ig_android_video_ffmpegutil_pts_fix,ig_android_multi_tap_login_new,ig_save_smartlock_universe,ig_android_caption_typeahead_fix_on_o_universe,ig_android_enable_keyboardlistener_redesign,ig_android_sign_in_password_visibility_universe,ig_android_nux_add_email_device,ig_android_direct_remove_view_mode_stickiness_universe,ig_android_hide_contacts_list_in_nux,ig_android_new_users_one_tap_holdout_universe,ig_android_ingestion_video_support_hevc_decoding,ig_android_mas_notification_badging_universe,ig_android_secondary_account_in_main_reg_flow_universe,ig_android_secondary_account_creation_universe,ig_android_account_recovery_auto_login,ig_android_pwd_encrytpion,ig_android_bottom_sheet_keyboard_leaks,ig_android_sim_info_upload,ig_android_mobile_http_flow_device_universe,ig_android_hide_fb_button_when_not_installed_universe,ig_android_account_linking_on_concurrent_user_session_infra_universe,ig_android_targeted_one_tap_upsell_universe,ig_android_gmail_oauth_in_reg,ig_android_account_linking_flow_shorten_universe,ig_android_vc_interop_use_test_igid_universe,ig_android_notification_unpack_universe,ig_android_registration_confirmation_code_universe,ig_android_device_based_country_verification,ig_android_log_suggested_users_cache_on_error,ig_android_reg_modularization_universe,ig_android_device_verification_separate_endpoint,ig_android_universe_noticiation_channels,ig_android_account_linking_universe,ig_android_hsite_prefill_new_carrier,ig_android_one_login_toast_universe,ig_android_retry_create_account_universe,ig_android_family_apps_user_values_provider_universe,ig_android_reg_nux_headers_cleanup_universe,ig_android_mas_ui_polish_universe,ig_android_device_info_foreground_reporting,ig_android_shortcuts_2019,ig_android_device_verification_fb_signup,ig_android_onetaplogin_optimization,ig_android_passwordless_account_password_creation_universe,ig_android_black_out_toggle_universe,ig_video_debug_overlay,ig_android_ask_for_permissions_on_reg,ig_assisted_login_universe,ig_android_security_intent_switchoff,ig_android_device_info_job_based_reporting,ig_android_add_account_button_in_profile_mas_universe,ig_android_add_dialog_when_delinking_from_child_account_universe,ig_android_passwordless_auth,ig_radio_button_universe_2,ig_android_direct_main_tab_account_switch,ig_android_recovery_one_tap_holdout_universe,ig_android_modularized_dynamic_nux_universe,ig_android_fb_account_linking_sampling_freq_universe,ig_android_fix_sms_read_lollipop,ig_android_access_flow_prefil"

const countryCodes = `[{"country_code":"1","source":["default"]}]`

type syncPayload struct {
	ID                    string `json:"id"`
	ServerConfigRetrieval string `json:"server_config_retrieval"`
	Experiments           string `json:"experiments"`
}

type loginPayload struct {
	Username          string `json:"username"`
	EncPassword       string `json:"enc_password"`
	GUID              string `json:"guid"`
	DeviceID          string `json:"device_id"`
	PhoneID           string `json:"phone_id"`
	Adid              string `json:"adid"`
	Jazoest           string `json:"jazoest"`
	CountryCodes      string `json:"country_codes"`
	GoogleTokens      string `json:"google_tokens"`
	LoginAttemptCount string `json:"login_attempt_count"`
	CsrfToken         string `json:"_csrftoken"`
}

type loginResponse struct {
	LoggedInUser struct {
		PK       json.Number `json:"pk"`
		Username string      `json:"username"`
	} `json:"logged_in_user"`
	Message string `json:"message"`
}

// jazoest is "2" followed by the sum of the character codes of the phone id.
func jazoest(phoneID string) string {
	sum := 0
	for _, r := range phoneID {
		sum += int(r)
	}
	return fmt.Sprintf("2%d", sum)
}

// sync fetches the pre-login cookies and the password encryption key, it
// returns a nil key when the platform did not send one.
func (c *Client) sync(ctx context.Context) (*passwordKey, error) {
	res, err := c.transport.Do(ctx, transport.Request{
		Endpoint: "qe/sync/",
		Method:   http.MethodPost,
		Data: syncPayload{
			ID:                    c.state.UUID,
			ServerConfigRetrieval: "1",
			Experiments:           loginExperiments,
		},
		Signed: true,
	})
	if err != nil {
		c.tel.ReportBroken(report_login_sync, err)
		return nil, err
	}
	if !res.IsSuccess() {
		c.tel.ReportWarning(report_login_sync, "rejected", res.StatusCode())
	}

	if mid := res.Header().Get("ig-set-x-mid"); mid != "" {
		c.state.Mid = mid
	}
	if csrf := c.transport.Cookie("csrftoken"); csrf != "" {
		c.state.CsrfToken = csrf
	}

	keyID := res.Header().Get("ig-set-password-encryption-key-id")
	pubKey := res.Header().Get("ig-set-password-encryption-pub-key")
	if keyID == "" || pubKey == "" {
		return nil, nil
	}
	key, err := parsePasswordKey(keyID, pubKey)
	if err != nil {
		// the plain format is still accepted
		c.tel.ReportWarning(report_login_sync, err)
		return nil, nil
	}
	return &key, nil
}

// Login authenticates with the configured credentials and fills the state
// with the user id and the tokens the platform hands out.
func (c *Client) Login(ctx context.Context) error {
	if err := actions.NotEmpty("username", c.username); err != nil {
		return err
	}
	if err := actions.NotEmpty("password", c.password); err != nil {
		return err
	}

	key, err := c.sync(ctx)
	if err != nil {
		return fmt.Errorf("login: sync: %w", err)
	}

	encPassword, err := encryptPassword(c.password, key, c.chrono.Now())
	if err != nil {
		c.tel.ReportBroken(report_login, err)
		return fmt.Errorf("login: encrypt password: %w", err)
	}

	res, err := c.transport.Do(ctx, transport.Request{
		Endpoint: "accounts/login/",
		Method:   http.MethodPost,
		Data: loginPayload{
			Username:          c.username,
			EncPassword:       encPassword,
			GUID:              c.state.UUID,
			DeviceID:          c.state.DeviceID,
			PhoneID:           c.state.PhoneID,
			Adid:              c.state.AdvertisingID,
			Jazoest:           jazoest(c.state.PhoneID),
			CountryCodes:      countryCodes,
			GoogleTokens:      "[]",
			LoginAttemptCount: "0",
			CsrfToken:         c.state.CsrfToken,
		},
		Signed: true,
	})
	if err != nil {
		c.tel.ReportBroken(report_login, err)
		return fmt.Errorf("login: %w", err)
	}

	var body loginResponse
	decodeErr := json.Unmarshal(res.Body(), &body)
	if !res.IsSuccess() {
		message := strings.TrimSpace(body.Message)
		if message == "" {
			message = "no message"
		}
		c.tel.ReportWarning(report_login, res.StatusCode(), message)
		return fmt.Errorf("%w: %s: %s", ErrLoginFailed, res.Status(), message)
	}
	if decodeErr != nil {
		c.tel.ReportBroken(report_login, decodeErr)
		return fmt.Errorf("%w: decode response: %w", ErrLoginFailed, decodeErr)
	}
	if body.LoggedInUser.PK == "" {
		return fmt.Errorf("%w: response has no user id", ErrLoginFailed)
	}

	c.state.UserID = body.LoggedInUser.PK.String()
	if auth := res.Header().Get("ig-set-authorization"); auth != "" {
		c.state.Authorization = auth
	}
	if mid := res.Header().Get("ig-set-x-mid"); mid != "" {
		c.state.Mid = mid
	}
	if csrf := c.transport.Cookie("csrftoken"); csrf != "" {
		c.state.CsrfToken = csrf
	}

	c.tel.ReportDebug("logged in", c.state.UserID)
	return nil
}
