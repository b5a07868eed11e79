package webapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pjecz/plataforma-web/storage/model"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// filtros selects which foreign key filters a listing understands
type filtros struct {
	autoridad bool
	distrito  bool
}

// page is the body of a list response
type page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// datatable is the body expected by DataTables server side processing
type datatable[T any] struct {
	Draw            int   `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	Data            []T   `json:"data"`
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func queryUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return uint(id), nil
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &d, nil
}

// listQuery reads the common listing parameters. Paging uses offset and
// limit, or start and length for datatables.
func listQuery(c *fiber.Ctx, f filtros) (q model.ListQuery, err error) {
	if q.Estatus, err = model.ParseEstatus(c.Query("estatus")); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if f.autoridad {
		if q.AutoridadID, err = queryUint(c, "autoridad_id"); err != nil {
			return
		}
	}
	if f.distrito {
		if q.DistritoID, err = queryUint(c, "distrito_id"); err != nil {
			return
		}
	}
	if q.Desde, err = queryDate(c, "desde"); err != nil {
		return
	}
	if q.Hasta, err = queryDate(c, "hasta"); err != nil {
		return
	}
	q.Ascending = c.Query("orden") == "asc"
	q.Offset = c.QueryInt("offset", c.QueryInt("start", 0))
	q.Limit = c.QueryInt("limit", c.QueryInt("length", defaultLimit))
	if q.Offset < 0 {
		return q, fiber.NewError(fiber.StatusBadRequest, "invalid offset")
	}
	// datatables asks for everything with a length of -1
	if q.Limit <= 0 || q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q, nil
}

func sendPage[T any](c *fiber.Ctx, items []T, total int64) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(page[T]{Data: items, Total: total})
}

func sendDatatable[T any](c *fiber.Ctx, items []T, total int64) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(
		datatable[T]{
			Draw:            c.QueryInt("draw", 0),
			RecordsTotal:    total,
			RecordsFiltered: total,
			Data:            items,
		},
	)
}
