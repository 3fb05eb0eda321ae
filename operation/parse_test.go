package operation

import (
	"testing"

	"github.com/livepeer/clip-api/errors"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseTrim(t *testing.T) {
	req, err := Parse("/trim/start:5,end:10/clip.mp4")
	require.NoError(t, err)
	require.Equal(t, Trim, req.Operation)
	require.Equal(t, "clip.mp4", req.SourceFile)
	require.Equal(t, "start:5,end:10", req.RawParams)
	require.Equal(t, map[string]*string{
		"start": strPtr("5"),
		"end":   strPtr("10"),
	}, req.Parameters)
}

func TestParseFlagParameter(t *testing.T) {
	req, err := Parse("trim/start:1,fast/clip.mp4")
	require.NoError(t, err)
	require.True(t, req.Has(ParamFast))
	_, hasValue := req.Value(ParamFast)
	require.False(t, hasValue)
	require.Nil(t, req.Parameters[ParamFast])
}

func TestParseThumbnailPercentage(t *testing.T) {
	req, err := Parse("/thumbnail/start:50%,height:240/bigbuckbunny.mp4")
	require.NoError(t, err)
	require.Equal(t, Thumbnail, req.Operation)
	pct, ok := req.PercentageStart()
	require.True(t, ok)
	require.Equal(t, 50.0, pct)
}

func TestParseUnescapesSourceFile(t *testing.T) {
	req, err := Parse("/trim/start:1/%5B60fps%5D%205%20minutes.mp4")
	require.NoError(t, err)
	require.Equal(t, "[60fps] 5 minutes.mp4", req.SourceFile)
}

func TestParseEscapedPath(t *testing.T) {
	req, err := Parse("/thumbnail/start:25%25/dir%2Fclip.mp4")
	require.NoError(t, err)
	require.Equal(t, "dir/clip.mp4", req.SourceFile)
	require.Equal(t, "start:25%", req.RawParams)
	pct, ok := req.PercentageStart()
	require.True(t, ok)
	require.Equal(t, 25.0, pct)
}

func TestParseRejections(t *testing.T) {
	for _, tt := range []struct {
		name       string
		path       string
		badRequest bool
		notFound   bool
	}{
		{name: "favicon", path: "/favicon.ico", notFound: true},
		{name: "unknown key alone", path: "/trim/zzz:1/clip.mp4", badRequest: true},
		{name: "unknown key among valid ones", path: "/trim/start:1,zzz:1,end:4/clip.mp4", badRequest: true},
		{name: "unknown key at the end", path: "/trim/start:1,end:4,zzz:1/clip.mp4", badRequest: true},
		{name: "empty token", path: "/trim/start:1,/clip.mp4", badRequest: true},
		{name: "empty param list", path: "/trim//clip.mp4", badRequest: true},
		{name: "duplicate key", path: "/trim/start:1,start:2/clip.mp4", badRequest: true},
		{name: "start without value", path: "/trim/start/clip.mp4", badRequest: true},
		{name: "non numeric start", path: "/trim/start:abc/clip.mp4", badRequest: true},
		{name: "negative end", path: "/trim/start:1,end:-4/clip.mp4", badRequest: true},
		{name: "zero height", path: "/trim/height:0/clip.mp4", badRequest: true},
		{name: "infinite width", path: "/trim/width:Inf/clip.mp4", badRequest: true},
		{name: "percentage over 100", path: "/thumbnail/start:150%/clip.mp4", badRequest: true},
		{name: "percentage on trim", path: "/trim/start:50%/clip.mp4", badRequest: true},
		{name: "legacy two segment path", path: "/s:5,f:10/clip.mp4", badRequest: true},
		{name: "unknown operation", path: "/watermark/start:1/clip.mp4", notFound: true},
		{name: "too many segments", path: "/trim/start:1/dir/clip.mp4", notFound: true},
		{name: "root", path: "/", notFound: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Parse(tt.path)
			require.Error(t, err)
			require.Equal(t, Request{}, req)
			require.Equal(t, tt.badRequest, errors.IsBadRequest(err), "bad request classification: %s", err)
			require.Equal(t, tt.notFound, errors.IsNotFound(err), "not found classification: %s", err)
		})
	}
}

func TestKind(t *testing.T) {
	require.Equal(t, "mp4", Trim.Extension())
	require.Equal(t, "jpg", Thumbnail.Extension())
	require.Equal(t, "video/mp4", Trim.ContentType())
	require.Equal(t, "image/jpeg", Thumbnail.ContentType())
	_, ok := ParseKind("concat")
	require.False(t, ok)
}
