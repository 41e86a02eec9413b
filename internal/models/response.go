package models

import (
	"time"

	"starnav.teamgannon.org/internal/clock"
)

// ResponseModel is the envelope every API response is wrapped in.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

const ResponseVersion = 1

func NewOKResponse(data interface{}, c clock.Clock) ResponseModel {
	return NewResponse(200, data, "OK", c)
}

// NewListResponse wraps list with the limitExceeded flag set when the result was truncated.
func NewListResponse(list interface{}, limitExceeded bool, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"limitExceeded": limitExceeded,
		"list":          list,
	}
	return NewOKResponse(data, c)
}

func NewEntryResponse(entry interface{}, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"entry": entry,
	}
	return NewOKResponse(data, c)
}

func NewResponse(code int, data interface{}, text string, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: c.NowUnixMilli(),
		Data:        data,
		Text:        text,
		Version:     ResponseVersion,
	}
}

type CurrentTimeData struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
}

func NewCurrentTimeData(t time.Time) CurrentTimeData {
	return CurrentTimeData{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixMilli(),
	}
}
