package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/domain"
	"github.com/love4pets/realtime/internal/storage"
)

// crudEntities is the set of tables exposed under /api. Schema validation
// belongs to the upstream backend; this surface is storage glue plus event
// emission.
var crudEntities = []string{"usuario", "animal", "publicacion", "adopcion", "donacion", "refugio"}

// roomKeys are record fields whose values double as room names, so a
// dashboard watching one user/refugio/animal gets targeted copies.
var roomKeys = []string{"id_usuario", "id_refugio", "id_animal"}

func (a *API) registerCRUD(g *gin.RouterGroup) {
	for _, entity := range crudEntities {
		g.POST("/"+entity, a.createRecord(entity))
		g.GET("/"+entity, a.listRecords(entity))
		g.GET("/"+entity+"/:id", a.getRecord(entity))
		g.PUT("/"+entity+"/:id", a.updateRecord(entity))
		g.DELETE("/"+entity+"/:id", a.deleteRecord(entity))
	}
}

func (a *API) createRecord(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec storage.Record
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}

		idKey := storage.IDColumn(entity)
		id := stringValue(rec[idKey])
		if id == "" {
			id = uuid.NewString()
		}
		rec[idKey] = id

		if err := a.Store.Insert(c.Request.Context(), entity, rec); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("entity", entity).Msg("insert failed")
		}
		a.emitEntityEvent(entity, domain.ActionCreated, rec)
		c.JSON(http.StatusCreated, rec)
	}
}

func (a *API) listRecords(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := a.Store.GetAll(c.Request.Context(), entity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func (a *API) getRecord(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := a.Store.GetByID(c.Request.Context(), entity, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (a *API) updateRecord(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		existing, err := a.Store.GetByID(c.Request.Context(), entity, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		var patch storage.Record
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
			return
		}
		for k, v := range patch {
			existing[k] = v
		}
		existing[storage.IDColumn(entity)] = id

		if err := a.Store.Update(c.Request.Context(), entity, id, existing); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("entity", entity).Msg("update failed")
		}
		a.emitEntityEvent(entity, domain.ActionUpdated, existing)
		c.JSON(http.StatusOK, existing)
	}
}

func (a *API) deleteRecord(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		existing, err := a.Store.GetByID(c.Request.Context(), entity, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err := a.Store.Delete(c.Request.Context(), entity, id); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("entity", entity).Msg("delete failed")
		}
		a.emitEntityEvent(entity, domain.ActionDeleted, existing)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// emitEntityEvent broadcasts the mutation and targets the rooms named by
// the record's relation ids.
func (a *API) emitEntityEvent(entity, action string, rec storage.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("entity", entity).Msg("marshal record")
		return
	}
	eventName := domain.CRUDEvent(entity, action)
	a.Dispatch.Dispatch(domain.Envelope{Type: eventName, Payload: payload})

	for _, key := range roomKeys {
		if room := stringValue(rec[key]); room != "" {
			a.Dispatch.Dispatch(domain.Envelope{
				Type:    eventName,
				Payload: payload,
				Target:  &domain.Target{Room: room},
			})
		}
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids are whole
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}
