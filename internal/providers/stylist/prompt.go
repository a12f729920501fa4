package stylist

import "strings"

// Markers label the two inline images so the model can tell the person apart
// from the garment. Each marker part is immediately followed by its image.
const (
	PersonMarker  = "PERSON:"
	GarmentMarker = "GARMENT:"
)

const trendNamePrompt = "Analyze the clothing item in this image. Provide a short, trendy, and " +
	"descriptive name for it suitable for a fashion catalog. For example: 'Quantum Weave Jacket', " +
	"'Holographic Parka', or 'Bio-Luminescent Gown'. Respond with only the name and nothing else."

const backgroundsPrompt = "Analyze the clothing in this image. Suggest 3-4 suitable and consistent " +
	"background scenarios for a professional photoshoot. For example, if it's a bikini, suggest " +
	"'a sunny beach with turquoise water'. If it's a formal suit, suggest 'a modern city skyline " +
	"at dusk'. Also include a simple option like 'a neutral studio backdrop' or 'a solid light " +
	"gray background' if appropriate. Respond ONLY with a comma-separated list of these short, " +
	"descriptive phrases and nothing else."

// buildComposeInstruction renders the task document sent alongside the two
// labelled images. The caller-supplied refinement text is embedded verbatim.
func buildComposeInstruction(refinements string) string {
	lines := []string{
		"MAIN TASK: photorealistic garment transfer.",
		"",
		"DETAILED INSTRUCTIONS:",
		"1. Identify the person: the image labelled '" + strings.TrimSuffix(PersonMarker, ":") + "' contains the person to be dressed.",
		"2. Identify the garment: the image labelled '" + strings.TrimSuffix(GarmentMarker, ":") + "' contains the piece of clothing to apply. Ignore any person or backdrop present in the garment image.",
		"3. Digital tailoring: perform a precise digital transfer. Dress the person with the garment.",
		"4. Absolute garment fidelity: preserve exactly every detail of the garment: patterns, logos, stitching, textures and the cut. This is a faithful replica, not a reinterpretation.",
		"5. Dynamic pose: you must adjust the person's pose to a more dynamic, elegant and professional fashion stance that flatters the garment. Do not reuse the original pose.",
		"6. Identity consistency: it is absolutely crucial to keep the person's facial features, skin tone and hair. The face must remain identical.",
		"7. User refinements: incorporate the following additional instructions into the final result: \"" + refinements + "\"",
		"8. Output quality and format: the final image must be an ultra-realistic, high-definition photograph with studio quality and a 4:5 portrait aspect ratio, ideal for social media posts.",
	}
	return strings.Join(lines, "\n")
}
