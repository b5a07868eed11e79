package model

// Backends groups all storage interfaces used by the application.
// It provides a single struct that can be passed around instead of
// multiple return values for each storage backend.
type Backends struct {
	Autoridades       AutoridadesStore
	Distritos         LifecycleStore[Distrito]
	Audiencias        SubmittableStore[Audiencia]
	ListasDeAcuerdos  ListasDeAcuerdosStore
	Sentencias        LifecycleStore[Sentencia]
	Peritos           LifecycleStore[Perito]
	RepReportes       LifecycleStore[RepReporte]
	CIDProcedimientos LifecycleStore[CIDProcedimiento]
	Bitacoras         BitacorasStore
	Tareas            TareasStore
	Parametros        ParametrosStore
	Usuarios          UsuariosStore
}
