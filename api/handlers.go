package api

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"medboard-api/domain"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, broker *Broker, zones domain.ZoneTable, logger *log.Logger) {
	rng := newPlacementRand()

	e.GET("/api/items", getItems(store))
	e.POST("/api/items/:type", createItem(store, broker, zones, rng, logger))
	e.PATCH("/api/items/:id", updateItem(store, broker, logger))
	e.DELETE("/api/items/:id", deleteItem(store, broker, logger))
	e.GET("/api/zones", getZones(zones))
	e.DELETE("/api/zones/:name/items", clearZone(store, broker, zones, logger))
	e.POST("/api/focus", postFocus(broker, logger))
	e.GET("/api/stream", streamBoard(store, broker, logger))
	e.GET("/healthz", healthz(store))
}

// Footprints used when a creation request omits width/height.
var defaultFootprints = map[domain.ItemType][2]float64{
	domain.TypeComponent: {420, 320},
	domain.TypeTodo:      {440, 380},
	domain.TypeAgent:     {440, 380},
	domain.TypeLabResult: {440, 380},
	domain.TypeEHR:       {760, 620},
	domain.TypeText:      {320, 120},
	domain.TypeShape:     {240, 240},
	domain.TypeSticky:    {220, 220},
	domain.TypeImage:     {400, 300},
}

func healthz(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if _, err := store.LoadAll(ctx); err != nil {
			return c.String(http.StatusServiceUnavailable, err.Error())
		}
		return c.NoContent(http.StatusOK)
	}
}

func getItems(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := store.LoadAll(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, itemsResponse{Items: items})
	}
}

func getZones(zones domain.ZoneTable) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, zones)
	}
}

// createItem handles POST /api/items/:type. Explicit coordinates in the
// request are used verbatim; otherwise the allocator picks a position,
// grid-packed when a zone manages the type and freeform when none does.
func createItem(store Storage, broker Broadcaster, zones domain.ZoneTable, rng *rand.Rand, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics := newItemRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		itemType := domain.ItemType(c.Param("type"))
		metrics.SetItemType(string(itemType))
		if !itemType.Valid() {
			metrics.SetErrorStage("invalid_type")
			err = c.String(http.StatusBadRequest, "unknown item type")
			return err
		}

		lr := io.LimitReader(c.Request().Body, postItemMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		var req createItemRequest
		if decErr := dec.Decode(&req); decErr != nil && decErr != io.EOF {
			metrics.SetErrorStage("decode")
			err = c.String(http.StatusBadRequest, "invalid body")
			return err
		}

		width, height := req.Width, req.Height
		if width <= 0 || height <= 0 {
			fp := defaultFootprints[itemType]
			if width <= 0 {
				width = fp[0]
			}
			if height <= 0 {
				height = fp[1]
			}
		}

		loadStart := time.Now()
		items, loadErr := store.LoadAll(ctx)
		metrics.ObserveLoad(time.Since(loadStart))
		if loadErr != nil {
			metrics.SetErrorStage("load")
			c.Logger().Error(loadErr)
			err = c.String(http.StatusInternalServerError, loadErr.Error())
			return err
		}

		now := nextTimestamp()
		item := domain.BoardItem{
			ID:        domain.NewItemID(time.Now()),
			Type:      itemType,
			Width:     width,
			Height:    height,
			TypeData:  req.TypeData,
			CreatedAt: now,
			UpdatedAt: now,
		}

		zone, managed := zones.ZoneFor(itemType)
		switch {
		case req.X != nil && req.Y != nil:
			// Explicit coordinates bypass the allocator entirely, even
			// inside a zone.
			item.X, item.Y = *req.X, *req.Y
			metrics.SetPlacement("explicit", "")
		case managed:
			item.X, item.Y = domain.PositionInZone(zone, item, items)
			metrics.SetPlacement("zone", zone.Name)
		default:
			seed := item
			if req.X != nil {
				seed.X = *req.X
			} else if req.Y != nil {
				seed.Y = *req.Y
			} else {
				seed.X, seed.Y = domain.RandomSeed(rng)
			}
			item.X, item.Y = domain.AvoidCollisions(seed, items, rng)
			metrics.SetPlacement("freeform", "")
		}

		items = append(items, item)
		saveStart := time.Now()
		if saveErr := store.SaveAll(ctx, items); saveErr != nil {
			// Durability traded for availability: the interactive path
			// still succeeds on a failed persist.
			metrics.SetPersistFailed()
			logger.WithError(saveErr).Error("persist items failed")
		}
		metrics.ObserveSave(time.Since(saveStart))

		broker.Broadcast(domain.EventItemCreated, item)
		err = c.JSON(http.StatusCreated, item)
		return err
	}
}

func updateItem(store Storage, broker Broadcaster, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param("id")

		lr := io.LimitReader(c.Request().Body, postItemMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		var req updateItemRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		items, err := store.LoadAll(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}

		idx := -1
		for i := range items {
			if items[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return c.String(http.StatusNotFound, "unknown item")
		}

		item := &items[idx]
		if req.X != nil {
			item.X = *req.X
		}
		if req.Y != nil {
			item.Y = *req.Y
		}
		if req.Width != nil && *req.Width > 0 {
			item.Width = *req.Width
		}
		if req.Height != nil && *req.Height > 0 {
			item.Height = *req.Height
		}
		if len(req.TypeData) > 0 {
			item.TypeData = req.TypeData
		}
		item.UpdatedAt = nextTimestamp()

		if saveErr := store.SaveAll(ctx, items); saveErr != nil {
			logger.WithError(saveErr).Error("persist items failed")
		}

		broker.Broadcast(domain.EventItemUpdated, *item)
		return c.JSON(http.StatusOK, *item)
	}
}

func deleteItem(store Storage, broker Broadcaster, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param("id")

		items, err := store.LoadAll(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}

		kept := items[:0]
		found := false
		for _, it := range items {
			if it.ID == id {
				found = true
				continue
			}
			kept = append(kept, it)
		}
		if !found {
			return c.String(http.StatusNotFound, "unknown item")
		}

		if saveErr := store.SaveAll(ctx, kept); saveErr != nil {
			logger.WithError(saveErr).Error("persist items failed")
		}

		broker.Broadcast(domain.EventItemDeleted, domain.ItemDeletedEvent{ID: id})
		return c.NoContent(http.StatusNoContent)
	}
}

// clearZone removes only grid-managed item types whose stored coordinates
// fall inside the named zone; decoration items in the same rectangle stay.
func clearZone(store Storage, broker Broadcaster, zones domain.ZoneTable, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		zone, ok := zones.ByName(c.Param("name"))
		if !ok {
			return c.String(http.StatusNotFound, "unknown zone")
		}

		items, err := store.LoadAll(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}

		kept := items[:0]
		removed := 0
		for _, it := range items {
			if zone.Contains(it.X, it.Y) && zone.Manages(it.Type) {
				removed++
				continue
			}
			kept = append(kept, it)
		}

		if saveErr := store.SaveAll(ctx, kept); saveErr != nil {
			logger.WithError(saveErr).Error("persist items failed")
		}

		broker.Broadcast(domain.EventZoneCleared, domain.ZoneClearedEvent{Zone: zone.Name, Removed: removed})
		return c.JSON(http.StatusOK, clearZoneResponse{Zone: zone.Name, Removed: removed})
	}
}
