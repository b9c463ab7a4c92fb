package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/models"
	"github.com/playmatatu/plinko/internal/operator"
	"github.com/playmatatu/plinko/internal/templates"
)

// requestFormat picks the template format from ?format= or the Content-Type
func requestFormat(c *gin.Context) (templates.Format, error) {
	if f := c.Query("format"); f != "" {
		return templates.ParseFormat(f)
	}
	ct := c.ContentType()
	if strings.Contains(ct, "yaml") {
		return templates.FormatYAML, nil
	}
	return templates.FormatJSON, nil
}

// ListTemplates lists saved reward templates
func ListTemplates(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []models.RewardTemplate{}
		}
		c.JSON(http.StatusOK, gin.H{"templates": list})
	}
}

// GetTemplate returns the labels of a saved template
func GetTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		labels, err := store.Get(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "labels": labels})
	}
}

// ExportTemplate downloads a template as a JSON or YAML file
func ExportTemplate(store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		format, err := templates.ParseFormat(c.DefaultQuery("format", "json"))
		if err != nil {
			respondError(c, err)
			return
		}
		labels, err := store.Get(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := templates.Encode(&buf, labels, format); err != nil {
			respondError(c, err)
			return
		}
		contentType := "application/json"
		filename := name + ".json"
		if format == templates.FormatYAML {
			contentType = "application/yaml"
			filename = name + ".yaml"
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

// SaveTemplate stores a template. The body is a JSON or YAML array of labels;
// with ?from=board the labels currently on the board are saved instead.
func SaveTemplate(db *sqlx.DB, store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		username := c.GetString("operator")

		var labels []string
		if c.Query("from") == "board" {
			if !requireBoard(c) {
				return
			}
			labels = game.Manager.Layout().Labels()
		} else {
			format, err := requestFormat(c)
			if err != nil {
				respondError(c, err)
				return
			}
			labels, err = templates.Decode(c.Request.Body, format)
			if err != nil {
				respondError(c, err)
				return
			}
		}

		details := map[string]interface{}{"name": name, "labels": len(labels)}
		if err := store.Save(c.Request.Context(), name, labels, username); err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "save_template", details, false)
			respondError(c, err)
			return
		}
		operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "save_template", details, true)
		log.Printf("[TEMPLATE] %s saved template %s (%d labels)", username, name, len(labels))

		c.JSON(http.StatusOK, gin.H{"name": name, "labels": labels})
	}
}

// ApplyTemplate loads a saved template onto the board
func ApplyTemplate(db *sqlx.DB, store *templates.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireBoard(c) {
			return
		}
		name := c.Param("name")
		username := c.GetString("operator")

		labels, err := store.Get(c.Request.Context(), name)
		if err != nil {
			if !errors.Is(err, templates.ErrTemplateNotFound) {
				log.Printf("[TEMPLATE] Failed to load template %s: %v", name, err)
			}
			respondError(c, err)
			return
		}
		cancelled, err := game.Manager.ReloadRewards(labels)
		details := map[string]interface{}{"name": name}
		if err != nil {
			operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "apply_template", details, false)
			respondError(c, err)
			return
		}
		operator.LogAction(db, username, c.ClientIP(), c.FullPath(), "apply_template", details, true)

		c.JSON(http.StatusOK, gin.H{
			"layout":    game.Manager.Layout(),
			"cancelled": nonNil(cancelled),
		})
	}
}
