package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/clip-api/log"
	"github.com/livepeer/clip-api/pipeline"
)

// ClipProcessor runs one clip request through the pipeline
type ClipProcessor interface {
	Process(ctx context.Context, in pipeline.Request) (pipeline.Result, error)
}

type ClipAPIHandlersCollection struct {
	Processor          ClipProcessor
	DiagnosticsEnabled bool
}

func (d *ClipAPIHandlersCollection) Ok() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		if _, err := io.WriteString(w, "OK"); err != nil {
			log.LogNoRequestID("Failed to write HTTP response for " + req.URL.RawPath)
		}
	}
}
