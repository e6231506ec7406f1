package agent

import (
	"strings"

	"studynotes/types"
)

// Unavailable is stored for notes uploaded while no AI model is configured.
func Unavailable() types.Annotation {
	ann := emptyAnnotation("AI analysis unavailable")
	ann.Error = "AI model not configured - please check API key"
	ann.IndexRelevance = "Analysis not available"
	return ann
}

// Failed turns an error from the model into an annotation that tells the
// user what went wrong.
func Failed(err error, fileUpload bool) types.Annotation {
	ann := emptyAnnotation("Analysis failed")
	ann.Error = describe(err, fileUpload)
	ann.RawError = err.Error()
	ann.IndexRelevance = "AI analysis failed"
	if fileUpload {
		ann.IndexRelevance = "AI file analysis failed"
	}
	return ann
}

func describe(err error, fileUpload bool) string {
	msg := strings.ToLower(err.Error())
	switch {
	case isCredentials(msg):
		return "API credentials issue - please check your API key"
	case isModelNotFound(msg):
		return "Model not found - API model name issue"
	case strings.Contains(msg, "quota"):
		return "API quota exceeded - please try again later"
	case fileUpload && strings.Contains(msg, "file"):
		return "File upload issue - please check file format and size"
	}
	return err.Error()
}

func isCredentials(msg string) bool {
	return strings.Contains(msg, "credentials") || strings.Contains(msg, "api key")
}

func isModelNotFound(msg string) bool {
	return strings.Contains(msg, "model") && strings.Contains(msg, "not found")
}

// retryable is false for errors another attempt cannot fix.
func retryable(err error) bool {
	msg := strings.ToLower(err.Error())
	return !isCredentials(msg) && !isModelNotFound(msg) && !strings.Contains(msg, "not supported")
}
