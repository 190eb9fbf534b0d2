package domain

// Entity DTOs mirroring the shapes the upstream REST backend sends on the
// per-entity webhook endpoints. The relay only shape-checks them; it never
// acts on individual fields.

type Animal struct {
	IDAnimal       int      `json:"id_animal" validate:"required"`
	Nombre         string   `json:"nombre" validate:"required"`
	Edad           *int     `json:"edad,omitempty"`
	Estado         string   `json:"estado,omitempty"`
	Descripcion    string   `json:"descripcion,omitempty"`
	Fotos          []string `json:"fotos,omitempty"`
	EstadoAdopcion string   `json:"estado_adopcion,omitempty" validate:"omitempty,oneof=disponible adoptado en_proceso no_disponible"`
	IDEspecie      *int     `json:"id_especie,omitempty"`
	IDRefugio      *int     `json:"id_refugio,omitempty"`
	NombreEspecie  string   `json:"nombre_especie,omitempty"`
	NombreRefugio  string   `json:"nombre_refugio,omitempty"`
}

type Publicacion struct {
	IDPublicacion int    `json:"id_publicacion" validate:"required"`
	IDUsuario     int    `json:"id_usuario" validate:"required"`
	Titulo        string `json:"titulo" validate:"required"`
	Descripcion   string `json:"descripcion,omitempty"`
	FechaSubida   string `json:"fecha_subida,omitempty"`
	Estado        string `json:"estado,omitempty"`
	IDAnimal      *int   `json:"id_animal,omitempty"`
	NombreUsuario string `json:"nombre_usuario,omitempty"`
	NombreAnimal  string `json:"nombre_animal,omitempty"`
}

type Adopcion struct {
	IDAdopcion        int    `json:"id_adopcion" validate:"required"`
	IDPublicacion     int    `json:"id_publicacion" validate:"required"`
	IDUsuario         int    `json:"id_usuario" validate:"required"`
	FechaAdopcion     string `json:"fecha_adopcion,omitempty"`
	Estado            string `json:"estado,omitempty"`
	NombreUsuario     string `json:"nombre_usuario,omitempty"`
	TituloPublicacion string `json:"titulo_publicacion,omitempty"`
	IDAnimal          *int   `json:"id_animal,omitempty"`
	NombreAnimal      string `json:"nombre_animal,omitempty"`
}

type Refugio struct {
	IDRefugio       int    `json:"id_refugio" validate:"required"`
	Nombre          string `json:"nombre" validate:"required"`
	Direccion       string `json:"direccion,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	Descripcion     string `json:"descripcion,omitempty"`
	TotalAnimales   *int   `json:"total_animales,omitempty"`
	CapacidadMaxima *int   `json:"capacidad_maxima,omitempty"`
}

type Campania struct {
	IDCampania         int    `json:"id_campania" validate:"required"`
	Titulo             string `json:"titulo" validate:"required"`
	Descripcion        string `json:"descripcion,omitempty"`
	FechaInicio        string `json:"fecha_inicio,omitempty"`
	FechaFin           string `json:"fecha_fin,omitempty"`
	Lugar              string `json:"lugar,omitempty"`
	Organizador        string `json:"organizador,omitempty"`
	Estado             string `json:"estado,omitempty"`
	IDTipoCampania     *int   `json:"id_tipo_campania,omitempty"`
	NombreTipoCampania string `json:"nombre_tipo_campania,omitempty"`
	TotalVoluntarios   *int   `json:"total_voluntarios,omitempty"`
}

type CausaUrgente struct {
	IDCausaUrgente string   `json:"id_causa_urgente" validate:"required"`
	Titulo         string   `json:"titulo" validate:"required"`
	Descripcion    string   `json:"descripcion,omitempty"`
	Meta           *float64 `json:"meta,omitempty"`
	Recaudado      *float64 `json:"recaudado,omitempty"`
	FechaLimite    string   `json:"fecha_limite,omitempty"`
	IDRefugio      string   `json:"id_refugio,omitempty"`
	IDAnimal       string   `json:"id_animal,omitempty"`
	Fotos          []string `json:"fotos,omitempty"`
	NombreRefugio  string   `json:"nombre_refugio,omitempty"`
	NombreAnimal   string   `json:"nombre_animal,omitempty"`
}
