package lifecycle

import "github.com/celerix-dev/painel-store/pkg/schema"

// DefaultMatrix returns a fresh copy of the built-in responsibility matrix, all tasks undone.
func DefaultMatrix() []schema.MatrixRole {
	return schema.CloneMatrix(defaultMatrix)
}

var defaultMatrix = []schema.MatrixRole{
	{
		ID: "preposto", Title: "Preposto", IconName: "Briefcase", Color: "bg-blue-600",
		Tasks: []schema.MatrixTask{
			{ID: "p1", Description: "DDS De liderança"},
			{ID: "p2", Description: "Woc"},
			{ID: "p3", Description: "Observação de tarefas"},
			{ID: "p4", Description: "Inspeção em HSE"},
			{ID: "p5", Description: "Roda de conversa"},
		},
	},
	{
		ID: "enc_geral", Title: "Encarregado Geral", IconName: "UserCog", Color: "bg-indigo-600",
		Tasks: []schema.MatrixTask{
			{ID: "eg_hse_1", Description: "Evento sem lesão / Condição de risco"},
			{ID: "eg_hse_2", Description: "Observação de Tarefa"},
			{ID: "eg_hse_3", Description: "Inspeção de HSE"},
		},
	},
	{
		ID: "encarregado", Title: "Encarregado", IconName: "HardHat", Color: "bg-amber-600",
		Tasks: []schema.MatrixTask{
			{ID: "enc_hse_1", Description: "Evento sem lesão / Condição de risco"},
			{ID: "enc_hse_2", Description: "Observação de Tarefa"},
			{ID: "enc_hse_3", Description: "Inspeção de HSE"},
		},
	},
	{
		// Second foreman crew, shown in green
		ID: "encarregado_verde", Title: "Encarregado", IconName: "HardHat", Color: "bg-green-600",
		Tasks: []schema.MatrixTask{
			{ID: "enc_green_hse_1", Description: "Evento sem lesão / Condição de risco"},
			{ID: "enc_green_hse_2", Description: "Observação de Tarefa"},
			{ID: "enc_green_hse_3", Description: "Inspeção de HSE"},
		},
	},
	{
		ID: "tec_seguranca", Title: "Téc. Segurança", IconName: "Shield", Color: "bg-red-600",
		Tasks: []schema.MatrixTask{
			{ID: "ts1", Description: "DDS da Liderança"},
			{ID: "ts2", Description: "WOC - Caminhar, Observar e Conversar"},
			{ID: "ts3", Description: "Inspeção de HSE"},
			{ID: "ts4", Description: "Evento sem lesão / Condição de risco (ALTO RISCO)"},
			{ID: "ts5", Description: "Coach em HSE"},
			{ID: "ts6", Description: "Observação de Tarefa"},
		},
	},
}
