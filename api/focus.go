package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"medboard-api/domain"
)

// Server-side focus option defaults. Sub-element targeting zooms tighter and
// pans faster than whole-item targeting.
const (
	defaultItemZoom        = 1.0
	defaultItemDuration    = 1600
	defaultSubElemZoom     = 1.5
	defaultSubElemDuration = 1200
)

func defaultFocusOptions(subElement string) domain.FocusOptions {
	opts := domain.FocusOptions{
		Zoom:           defaultItemZoom,
		Duration:       defaultItemDuration,
		Highlight:      true,
		ScrollIntoView: true,
	}
	if subElement != "" {
		opts.Zoom = defaultSubElemZoom
		opts.Duration = defaultSubElemDuration
	}
	return opts
}

func (p *focusOptionsPatch) applyTo(opts *domain.FocusOptions) {
	if p == nil {
		return
	}
	if p.Zoom != nil {
		opts.Zoom = *p.Zoom
	}
	if p.Duration != nil {
		opts.Duration = *p.Duration
	}
	if p.Highlight != nil {
		opts.Highlight = *p.Highlight
	}
	if p.ScrollIntoView != nil {
		opts.ScrollIntoView = *p.ScrollIntoView
	}
}

// postFocus validates and normalizes a focus request, then broadcasts it.
// The acknowledgement only confirms the broadcast; whether any viewer
// resolved the item and ran the animation is not reported back.
func postFocus(broker Broadcaster, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, postFocusMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)

		var req focusRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		id := req.ItemID
		if id == "" {
			id = req.ObjectID
		}
		if id == "" {
			return c.String(http.StatusBadRequest, "missing item id")
		}

		opts := defaultFocusOptions(req.SubElement)
		req.Options.applyTo(&opts)

		ev := domain.FocusEvent{
			ItemID:     id,
			ObjectID:   id,
			SubElement: req.SubElement,
			Options:    opts,
			Time:       nextTimestamp(),
		}
		broker.Broadcast(domain.EventFocusRequested, ev)

		logger.WithFields(log.Fields{
			"item":        id,
			"sub_element": req.SubElement,
		}).Debug("focus broadcast")

		return c.JSON(http.StatusOK, focusResponse{
			Success:      true,
			ItemID:       id,
			SubElement:   req.SubElement,
			FocusOptions: opts,
		})
	}
}
