package model

// Table names follow the Spanish plurals used by the platform.

func (Autoridad) TableName() string        { return "autoridades" }
func (Audiencia) TableName() string        { return "audiencias" }
func (Bitacora) TableName() string         { return "bitacoras" }
func (CIDProcedimiento) TableName() string { return "cid_procedimientos" }
func (Distrito) TableName() string         { return "distritos" }
func (ListaDeAcuerdo) TableName() string   { return "listas_de_acuerdos" }
func (Parametro) TableName() string        { return "parametros" }
func (Perito) TableName() string           { return "peritos" }
func (RepReporte) TableName() string       { return "rep_reportes" }
func (Sentencia) TableName() string        { return "sentencias" }
func (Tarea) TableName() string            { return "tareas" }
func (Usuario) TableName() string          { return "usuarios" }
