package prompts

// Persona selects the assistant voice and model for chat.
type Persona string

const (
	PersonaGeneral     Persona = "general"
	PersonaStrategist  Persona = "strategist"
	PersonaDataAnalyst Persona = "data_analyst"
)

type personaConfig struct {
	pro         bool
	instruction string
}

var personas = map[Persona]personaConfig{
	PersonaGeneral: {
		instruction: "You are a helpful, general-purpose HR assistant for the NYX platform. Be concise and professional.",
	},
	PersonaStrategist: {
		pro:         true,
		instruction: "You are an expert HR strategist. Provide insightful, high-level analysis and recommendations.",
	},
	PersonaDataAnalyst: {
		instruction: "You are a meticulous data analyst. Focus on the numbers and the facts.",
	},
}

// ResolvePersona maps a request value to a known persona. Empty and
// unrecognised values resolve to PersonaGeneral.
func ResolvePersona(s string) Persona {
	p := Persona(s)
	if _, ok := personas[p]; ok {
		return p
	}
	return PersonaGeneral
}
