package dto

type CrearOperarioRequest struct {
	CodigoOperario string `json:"codigo_operario" validate:"required,alphanum,min=2,max=20"`
	Nombre         string `json:"nombre"          validate:"required,min=2,max=100"`
}

// ActualizarOperarioRequest is a partial update; nil fields are left as they are.
type ActualizarOperarioRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	Activo *bool   `json:"activo"`
}

type OperarioResponse struct {
	ID             string `json:"id"`
	CodigoOperario string `json:"codigo_operario"`
	Nombre         string `json:"nombre"`
	Activo         bool   `json:"activo"`
	CreatedAt      string `json:"created_at"`
}
