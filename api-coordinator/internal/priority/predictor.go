package priority

import (
	"encoding/json"
	"fmt"
	"os"
)

// Features son los atributos de la tarea que alimentan el modelo,
// los mismos que usa el servicio de tareas al crear una.
type Features struct {
	NameLength        int
	DescriptionLength int
	OwnerSignal       float64
}

// Predictor mapea atributos de una tarea a una prioridad numérica positiva.
type Predictor interface {
	Score(f Features) float64
}

// MinPriority es el piso del modelo. El executor rechaza prioridad <= 0,
// así que el predictor nunca debe producirla.
const MinPriority = 0.1

// linearModel es la representación del modelo pre-entrenado: pesos lineales
// exportados a JSON. Suficiente como glue para un proveedor externo de scores.
type linearModel struct {
	WName  float64 `json:"w_name"`
	WDesc  float64 `json:"w_desc"`
	WOwner float64 `json:"w_owner"`
	Bias   float64 `json:"bias"`
}

var defaultModel = linearModel{
	WName:  0.05,
	WDesc:  0.01,
	WOwner: 1.0,
	Bias:   0.5,
}

// NewDefault devuelve el predictor con los pesos embebidos.
func NewDefault() Predictor {
	m := defaultModel
	return &m
}

// LoadModel lee los pesos desde un archivo JSON. Si path está vacío devuelve
// el modelo por defecto.
func LoadModel(path string) (Predictor, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("priority: leyendo modelo %s: %w", path, err)
	}

	m := defaultModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("priority: parseando modelo %s: %w", path, err)
	}
	return &m, nil
}

func (m *linearModel) Score(f Features) float64 {
	score := m.WName*float64(f.NameLength) +
		m.WDesc*float64(f.DescriptionLength) +
		m.WOwner*f.OwnerSignal +
		m.Bias
	if score < MinPriority {
		return MinPriority
	}
	return score
}
