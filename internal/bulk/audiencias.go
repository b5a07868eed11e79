// Package bulk loads hearings from CSV files and backs them up to CSV.
package bulk

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/internal/safe"
	"github.com/pjecz/plataforma-web/storage/model"
)

const (
	progressEvery    = 100
	expedienteMaxLen = 60
	respaldoTiempo   = "2006-01-02 15:04:05"
)

var feedTiempoLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Audiencias exchanges hearings with CSV files. Times in the files are in
// the local zone; stored times are UTC.
type Audiencias struct {
	autoridades model.AutoridadesStore
	audiencias  model.SubmittableStore[model.Audiencia]
	loc         *time.Location
	out         io.Writer
	metrics     *metrics.Metrics
}

// NewAudiencias returns an Audiencias writing its progress to out. m may be nil.
func NewAudiencias(backends model.Backends, loc *time.Location, out io.Writer, m *metrics.Metrics) *Audiencias {
	if loc == nil {
		loc = time.Local
	}
	return &Audiencias{
		autoridades: backends.Autoridades,
		audiencias:  backends.Audiencias,
		loc:         loc,
		out:         out,
		metrics:     m,
	}
}

// FeedOptions tunes Feed
type FeedOptions struct {
	// Supersede replaces the active hearing of the same authority and
	// tiempo instead of adding a second one
	Supersede bool
}

// FeedResult counts the rows of a feed
type FeedResult struct {
	Alimentadas  int
	Reemplazadas int
	Omitidas     int
}

// Feed loads the hearings in the CSV file at path. The file name without
// its extension is the clave of the owning authority.
func (b *Audiencias) Feed(ctx context.Context, path string, opts FeedOptions) (FeedResult, error) {
	var res FeedResult
	info, err := os.Stat(path)
	if err != nil {
		return res, errors.Errorf("%s no se encontró", filepath.Base(path))
	}
	if !info.Mode().IsRegular() {
		return res, errors.Errorf("%s no es un archivo", filepath.Base(path))
	}
	name := filepath.Base(path)
	clave := strings.TrimSuffix(name, filepath.Ext(name))
	autoridad, err := b.autoridades.Find(clave)
	if err != nil {
		var nf model.NotFoundError
		if errors.As(err, &nf) {
			return res, errors.Errorf("con el nombre del archivo %s no hay clave en autoridades", name)
		}
		return res, err
	}
	if !autoridad.EsJurisdiccional {
		return res, errors.New("la autoridad no es jurisdiccional")
	}

	f, err := os.Open(path)
	if err != nil {
		return res, errors.WithStack(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	colIndex, err := readHeader(reader)
	if err != nil {
		return res, err
	}

	fmt.Fprintln(b.out, "Alimentando audiencias...")
	lineNum := 1
	for {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, errors.Wrapf(err, "line %d", lineNum)
		}
		audiencia, ok := b.parseRecord(record, colIndex)
		if !ok {
			fmt.Fprintf(b.out, "  Tiempo incorrecto, se omite la línea %d\n", lineNum)
			b.metrics.BulkRow("feed", "omitida")
			res.Omitidas++
			continue
		}
		audiencia.AutoridadID = autoridad.ID
		if opts.Supersede {
			superseded, err := b.audiencias.InsertSuperseding(audiencia)
			if err != nil {
				return res, errors.Wrapf(err, "line %d", lineNum)
			}
			if superseded {
				res.Reemplazadas++
			}
		} else if err = b.audiencias.Insert(audiencia); err != nil {
			return res, errors.Wrapf(err, "line %d", lineNum)
		}
		b.metrics.BulkRow("feed", "alimentada")
		res.Alimentadas++
		if res.Alimentadas%progressEvery == 0 {
			fmt.Fprintf(b.out, "  Van %d...\n", res.Alimentadas)
		}
	}
	log.WithFields(
		log.Fields{
			"autoridad":    autoridad.Clave,
			"alimentadas":  res.Alimentadas,
			"reemplazadas": res.Reemplazadas,
			"omitidas":     res.Omitidas,
		},
	).Info("audiencias feed finished")
	fmt.Fprintf(b.out, "%d audiencias alimentadas.\n", res.Alimentadas)
	return res, nil
}

func readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	if _, ok := colIndex["tiempo"]; !ok {
		return nil, errors.New("missing required column: tiempo")
	}
	return colIndex, nil
}

func (b *Audiencias) parseRecord(record []string, colIndex map[string]int) (*model.Audiencia, bool) {
	tiempo, ok := b.parseTiempo(getColumn(record, colIndex, "tiempo"))
	if !ok {
		return nil, false
	}
	tipo := safe.String(getColumn(record, colIndex, "tipo_audiencia"), safe.DefaultMaxLen)
	if tipo == "" {
		tipo = model.TipoAudienciaNoDefinido
	}
	expediente := safe.Truncate(strings.TrimSpace(getColumn(record, colIndex, "expediente")), expedienteMaxLen)
	text := func(col string) string {
		return safe.String(getColumn(record, colIndex, col), safe.DefaultMaxLen)
	}
	return &model.Audiencia{
		Tiempo:           tiempo,
		TipoAudiencia:    tipo,
		Expediente:       expediente,
		Actores:          text("actores"),
		Demandados:       text("demandados"),
		Sala:             text("sala"),
		Caracter:         model.NormalizeCaracter(text("caracter")),
		CausaPenal:       text("causa_penal"),
		Delitos:          text("delitos"),
		Toca:             text("toca"),
		ExpedienteOrigen: text("expediente_origen"),
		Imputados:        text("imputados"),
		Origen:           text("origen"),
	}, true
}

func (b *Audiencias) parseTiempo(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range feedTiempoLayouts {
		if t, err := time.ParseInLocation(layout, s, b.loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}

// BackupOptions selects the hearings written by Backup
type BackupOptions struct {
	AutoridadID    uint
	AutoridadClave string
	// Desde is a YYYY-MM-DD local date
	Desde  string
	Output string
}

type respaldoRow struct {
	AutoridadClave   string `csv:"autoridad_clave"`
	Tiempo           string `csv:"tiempo"`
	TipoAudiencia    string `csv:"tipo_audiencia"`
	Expediente       string `csv:"expediente"`
	Actores          string `csv:"actores"`
	Demandados       string `csv:"demandados"`
	Sala             string `csv:"sala"`
	Caracter         string `csv:"caracter"`
	CausaPenal       string `csv:"causa_penal"`
	Delitos          string `csv:"delitos"`
	Toca             string `csv:"toca"`
	ExpedienteOrigen string `csv:"expediente_origen"`
	Imputados        string `csv:"imputados"`
	Origen           string `csv:"origen"`
}

// respaldoHeader returns the csv tags of respaldoRow in field order
func respaldoHeader() []string {
	fields := structs.New(respaldoRow{}).Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Tag("csv")
	}
	return header
}

func (r respaldoRow) values() []string {
	raw := structs.Values(r)
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i], _ = v.(string)
	}
	return out
}

// Backup writes the active hearings, oldest first, to a new CSV file. An
// existing file is never overwritten.
func (b *Audiencias) Backup(ctx context.Context, opts BackupOptions) (n int, err error) {
	if opts.Output == "" {
		opts.Output = "audiencias.csv"
	}
	q := model.ListQuery{Ascending: true}
	var autoridad *model.Autoridad
	switch {
	case opts.AutoridadID != 0:
		autoridad, err = b.autoridades.Get(opts.AutoridadID)
	case opts.AutoridadClave != "":
		autoridad, err = b.autoridades.Find(opts.AutoridadClave)
	}
	if err != nil {
		return 0, err
	}
	if autoridad != nil {
		if !autoridad.EsJurisdiccional {
			return 0, errors.New("la autoridad no es jurisdiccional")
		}
		q.AutoridadID = autoridad.ID
	}
	if opts.Desde != "" {
		desde, err := time.ParseInLocation(time.DateOnly, opts.Desde, b.loc)
		if err != nil {
			return 0, errors.Wrap(err, "fecha de inicio incorrecta")
		}
		desde = desde.UTC()
		q.Desde = &desde
	}

	audiencias, _, err := b.audiencias.List(q)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(opts.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return 0, errors.Errorf("%s existe, no voy a sobreescribirlo", filepath.Base(opts.Output))
		}
		return 0, errors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing file")
		}
	}()

	fmt.Fprintln(b.out, "Respaldando audiencias...")
	writer := csv.NewWriter(f)
	if err = writer.Write(respaldoHeader()); err != nil {
		return 0, errors.WithStack(err)
	}
	for _, a := range audiencias {
		if err = ctx.Err(); err != nil {
			return n, err
		}
		if err = writer.Write(b.respaldoRow(a).values()); err != nil {
			return n, errors.WithStack(err)
		}
		b.metrics.BulkRow("backup", "respaldada")
		n++
		if n%progressEvery == 0 {
			fmt.Fprintf(b.out, "  Van %d...\n", n)
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		return n, errors.WithStack(err)
	}
	fmt.Fprintf(b.out, "Respaldados %d audiencias en %s\n", n, filepath.Base(opts.Output))
	return n, nil
}

func (b *Audiencias) respaldoRow(a model.Audiencia) respaldoRow {
	row := respaldoRow{
		Tiempo:           a.Tiempo.In(b.loc).Format(respaldoTiempo),
		TipoAudiencia:    a.TipoAudiencia,
		Expediente:       a.Expediente,
		Actores:          a.Actores,
		Demandados:       a.Demandados,
		Sala:             a.Sala,
		CausaPenal:       a.CausaPenal,
		Delitos:          a.Delitos,
		Toca:             a.Toca,
		ExpedienteOrigen: a.ExpedienteOrigen,
		Imputados:        a.Imputados,
		Origen:           a.Origen,
	}
	if a.Autoridad != nil {
		row.AutoridadClave = a.Autoridad.Clave
	}
	if a.Caracter != nil {
		row.Caracter = *a.Caracter
	}
	return row
}
