package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MAKRANE-cpu/monographie/adapters/chart"
	"github.com/MAKRANE-cpu/monographie/adapters/excel"
	"github.com/MAKRANE-cpu/monographie/adapters/export"
	"github.com/MAKRANE-cpu/monographie/app"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/errors"

	"github.com/gin-gonic/gin"
)

type tableInfo struct {
	Name     string        `json:"name"`
	Kind     app.SheetKind `json:"kind"`
	IDColumn string        `json:"id_column"`
	Columns  []string      `json:"columns"`
	Rows     int           `json:"rows"`
}

func (s *Server) handleListTables(c *gin.Context) {
	tables, report, err := s.tables(c.Request.Context())
	if err != nil {
		s.jsonError(c, err)
		return
	}

	infos := make([]tableInfo, 0, tables.Len())
	for _, t := range tables.Tables() {
		infos = append(infos, tableInfo{
			Name:     t.Name,
			Kind:     app.ClassifySheet(t.Name),
			IDColumn: t.IDColumn,
			Columns:  t.Columns,
			Rows:     len(t.Rows),
		})
	}

	skipped := report.Skipped
	if skipped == nil {
		skipped = []sheet.SkippedSheet{}
	}
	c.JSON(http.StatusOK, gin.H{"tables": infos, "skipped": skipped})
}

// table resolves the :name parameter against the loaded collection
func (s *Server) table(c *gin.Context) (*sheet.Table, bool) {
	tables, _, err := s.tables(c.Request.Context())
	if err != nil {
		s.jsonError(c, err)
		return nil, false
	}
	name := c.Param("name")
	t, ok := tables.Get(name)
	if !ok {
		s.jsonError(c, errors.NotFound(fmt.Sprintf("sheet %q", name)))
		return nil, false
	}
	return t, true
}

func (s *Server) handleGetTable(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":   t,
		"kind":    app.ClassifySheet(t.Name),
		"summary": app.DescribeTable(t),
	})
}

// series returns the requested column, optionally reduced to its top entries
func series(c *gin.Context, t *sheet.Table) ([]sheet.Point, error) {
	column := c.Query("column")
	if column == "" {
		return nil, errors.InvalidInput("column is required")
	}
	pts, err := t.Series(column)
	if err != nil {
		return nil, errors.WithCode(errors.CodeNotFound, err)
	}

	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid top %q", raw))
		}
		pts = app.TopN(pts, n)
	}
	return pts, nil
}

func (s *Server) handleSeries(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	pts, err := series(c, t)
	if err != nil {
		s.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheet": t.Name, "column": c.Query("column"), "points": pts})
}

func (s *Server) handleChart(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	pts, err := series(c, t)
	if err != nil {
		s.jsonError(c, err)
		return
	}

	title := t.Name + " - " + c.Query("column")
	var buf bytes.Buffer
	if err := chart.Render(chart.ParseKind(c.Query("kind")), title, pts, &buf); err != nil {
		s.jsonError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	t, ok := s.table(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		s.jsonError(c, err)
		return
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatXLSX:
		err = excel.WriteTable(&buf, t)
	case export.FormatJSON:
		err = export.WriteJSON(&buf, t)
	default:
		err = export.WriteCSV(&buf, t)
	}
	if err != nil {
		s.jsonError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(t, format, s.now())))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
