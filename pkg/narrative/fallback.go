package narrative

import (
	"github.com/alex-ilgayev/socsim/pkg/event"
	"github.com/alex-ilgayev/socsim/pkg/threat"
)

// Picker selects an index in [0,n). *math/rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

var simulatedIntel = map[threat.Language][]event.Narrative{
	threat.LanguageEnglish: {
		{
			Title:                     "Advanced Persistent Threat (APT) Detected",
			TechnicalDetails:          "Pattern matching suggests a lateral movement attempt using compromised service accounts. High-frequency pings detected on internal VLAN 4.",
			AttackerProfile:           "Nation-state actor / Industrial Espionage Group",
			RecommendedCountermeasure: "Isolate VLAN 4 and rotate all service account credentials immediately.",
			ConfidenceScore:           87,
			MitigationPriority:        event.PriorityImmediate,
		},
		{
			Title:                     "Distributed Denial of Service (DDoS) Mitigation",
			TechnicalDetails:          "Inbound traffic spike identified as a SYN flood originating from a botnet of IoT devices. Traffic reaching 40Gbps.",
			AttackerProfile:           "Hired Botnet Operator",
			RecommendedCountermeasure: "Activate edge-filtering rules and scrub traffic through global CDN nodes.",
			ConfidenceScore:           92,
			MitigationPriority:        event.PriorityHigh,
		},
		{
			Title:                     "SQL Injection Attempt Blocked",
			TechnicalDetails:          "WAF intercepted malicious payload attempting to bypass authentication on the payroll portal using 'OR 1=1' variants.",
			AttackerProfile:           "Script Kiddie / Automated Scanner",
			RecommendedCountermeasure: "Patch database drivers and implement parameterized queries across all endpoints.",
			ConfidenceScore:           78,
			MitigationPriority:        event.PriorityMedium,
		},
	},
	threat.LanguageSpanish: {
		{
			Title:                     "Amenaza Persistente Avanzada (APT) Detectada",
			TechnicalDetails:          "El análisis de patrones sugiere un intento de movimiento lateral utilizando cuentas de servicio comprometidas. Pings de alta frecuencia detectados en la VLAN interna 4.",
			AttackerProfile:           "Actor estatal / Grupo de espionaje industrial",
			RecommendedCountermeasure: "Aislar la VLAN 4 y rotar todas las credenciales de las cuentas de servicio de inmediato.",
			ConfidenceScore:           87,
			MitigationPriority:        event.PriorityImmediate,
		},
		{
			Title:                     "Mitigación de Denegación de Servicio Distribuida (DDoS)",
			TechnicalDetails:          "Pico de tráfico entrante identificado como un ataque SYN flood originado por una botnet de dispositivos IoT. El tráfico alcanzó los 40 Gbps.",
			AttackerProfile:           "Operador de Botnet a sueldo",
			RecommendedCountermeasure: "Activar reglas de filtrado perimetral y limpiar el tráfico a través de nodos CDN globales.",
			ConfidenceScore:           92,
			MitigationPriority:        event.PriorityHigh,
		},
		{
			Title:                     "Intento de Inyección SQL Bloqueado",
			TechnicalDetails:          "El WAF interceptó un payload malicioso que intentaba eludir la autenticación en el portal de nómina utilizando variantes de 'OR 1=1'.",
			AttackerProfile:           "Script Kiddie / Escáner automatizado",
			RecommendedCountermeasure: "Parchear los controladores de la base de datos e implementar consultas parametrizadas en todos los puntos finales.",
			ConfidenceScore:           78,
			MitigationPriority:        event.PriorityMedium,
		},
	},
}

// Fallbacks returns the canned narratives for lang, falling back to English.
func Fallbacks(lang threat.Language) []event.Narrative {
	pool, ok := simulatedIntel[lang]
	if !ok {
		pool = simulatedIntel[threat.LanguageEnglish]
	}
	return append([]event.Narrative(nil), pool...)
}

// Fallback picks one canned narrative for lang. A nil picker always
// returns the first entry.
func Fallback(lang threat.Language, p Picker) event.Narrative {
	pool := Fallbacks(lang)
	if p == nil {
		return pool[0]
	}
	return pool[p.Intn(len(pool))]
}
