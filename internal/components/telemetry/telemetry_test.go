package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := &RecorderAPI{}
	scoped := NewScopedAPI("post", recorder)

	scoped.ReportBroken("upload", "status", 500)
	scoped.ReportWarning("like")
	scoped.ReportDebug("configure payload")
	scoped.ReportCount("uploads", 3)

	broken := recorder.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "post: upload", broken[0].ID)
	require.Equal(t, []any{"status", 500}, broken[0].Params)

	require.Equal(t, "post: like", recorder.Reports("warning")[0].ID)
	require.Equal(t, "post: configure payload", recorder.Reports("debug")[0].ID)

	counts := recorder.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}

func TestNestedScopedAPI(t *testing.T) {
	recorder := &RecorderAPI{}
	scoped := NewScopedAPI("instauto", NewScopedAPI("transport", recorder))
	scoped.ReportBroken("do")
	require.Equal(t, "transport: instauto: do", recorder.Reports("broken")[0].ID)
}

func TestOtlpConnConfigEnabled(t *testing.T) {
	require.False(t, OtlpConnConfig{}.Enabled())
	require.True(t, OtlpConnConfig{HttpEndpoint: "http://localhost:4318/v1/traces"}.Enabled())
	require.True(t, OtlpConnConfig{GrpcEndpoint: "http://localhost:4317"}.Enabled())
}

func TestOtlpConnConfigPrefersGrpc(t *testing.T) {
	require.Equal(t, "http", OtlpConnConfig{HttpEndpoint: "http://localhost:4318/v1/traces"}.transport())
	require.Equal(t, "grpc", OtlpConnConfig{
		GrpcEndpoint: "http://localhost:4317",
		HttpEndpoint: "http://localhost:4318/v1/traces",
	}.transport())
}
