package color

// builtinCatalog is the library's ~30-entry seed catalog across metals,
// plastics, and woods. Density is g/cm^3; Cost is a currency-agnostic
// per-unit-volume hint.
var builtinCatalog = []Material{
	// Metals.
	{Name: "aluminum", BaseColor: Opaque(0.83, 0.84, 0.85), Finish: Brushed, Metalness: 0.9, Roughness: 0.35, Opacity: 1, Density: 2.70, Cost: 4.0, CNCSuitable: true},
	{Name: "anodized_aluminum_black", BaseColor: Opaque(0.08, 0.08, 0.09), Finish: Anodized, Metalness: 0.6, Roughness: 0.4, Opacity: 1, Density: 2.70, Cost: 5.5, CNCSuitable: true},
	{Name: "anodized_aluminum_red", BaseColor: Opaque(0.55, 0.05, 0.08), Finish: Anodized, Metalness: 0.6, Roughness: 0.4, Opacity: 1, Density: 2.70, Cost: 5.5, CNCSuitable: true},
	{Name: "steel", BaseColor: Opaque(0.56, 0.57, 0.58), Finish: Satin, Metalness: 0.85, Roughness: 0.4, Opacity: 1, Density: 7.85, Cost: 2.5, CNCSuitable: true},
	{Name: "stainless_steel", BaseColor: Opaque(0.72, 0.73, 0.74), Finish: Brushed, Metalness: 0.9, Roughness: 0.3, Opacity: 1, Density: 8.00, Cost: 6.0, CNCSuitable: true},
	{Name: "polished_steel", BaseColor: Opaque(0.8, 0.8, 0.82), Finish: Polished, Metalness: 0.95, Roughness: 0.08, Opacity: 1, Density: 7.85, Cost: 3.5, CNCSuitable: true},
	{Name: "brass", BaseColor: Opaque(0.78, 0.64, 0.28), Finish: Satin, Metalness: 0.85, Roughness: 0.3, Opacity: 1, Density: 8.50, Cost: 5.0, CNCSuitable: true},
	{Name: "bronze", BaseColor: Opaque(0.61, 0.42, 0.23), Finish: Satin, Metalness: 0.8, Roughness: 0.35, Opacity: 1, Density: 8.80, Cost: 6.5, CNCSuitable: true},
	{Name: "copper", BaseColor: Opaque(0.72, 0.39, 0.22), Finish: Polished, Metalness: 0.9, Roughness: 0.2, Opacity: 1, Density: 8.96, Cost: 5.5, CNCSuitable: true},
	{Name: "titanium", BaseColor: Opaque(0.65, 0.64, 0.63), Finish: Brushed, Metalness: 0.8, Roughness: 0.45, Opacity: 1, Density: 4.50, Cost: 25.0, CNCSuitable: true},
	{Name: "gold", BaseColor: Opaque(0.91, 0.76, 0.29), Finish: Polished, Metalness: 1, Roughness: 0.1, Opacity: 1, Density: 19.30, Cost: 1800.0, CNCSuitable: false},
	{Name: "chrome", BaseColor: Opaque(0.77, 0.78, 0.78), Finish: Polished, Metalness: 1, Roughness: 0.04, Opacity: 1, Density: 7.19, Cost: 8.0, CNCSuitable: false},

	// Plastics (3D-printable).
	{Name: "pla_white", BaseColor: Opaque(0.95, 0.95, 0.93), Finish: Matte, Metalness: 0, Roughness: 0.6, Opacity: 1, Density: 1.24, Cost: 0.02, PrintMaterial: "PLA"},
	{Name: "pla_black", BaseColor: Opaque(0.06, 0.06, 0.07), Finish: Matte, Metalness: 0, Roughness: 0.6, Opacity: 1, Density: 1.24, Cost: 0.02, PrintMaterial: "PLA"},
	{Name: "pla_red", BaseColor: Opaque(0.78, 0.12, 0.12), Finish: Matte, Metalness: 0, Roughness: 0.6, Opacity: 1, Density: 1.24, Cost: 0.02, PrintMaterial: "PLA"},
	{Name: "pla_blue", BaseColor: Opaque(0.13, 0.3, 0.74), Finish: Matte, Metalness: 0, Roughness: 0.6, Opacity: 1, Density: 1.24, Cost: 0.02, PrintMaterial: "PLA"},
	{Name: "petg_clear", BaseColor: RGBA{R: 0.9, G: 0.95, B: 0.97, A: 0.35}, Finish: Glossy, Metalness: 0, Roughness: 0.15, Opacity: 0.35, Density: 1.27, Cost: 0.03, PrintMaterial: "PETG"},
	{Name: "abs_white", BaseColor: Opaque(0.92, 0.92, 0.9), Finish: Satin, Metalness: 0, Roughness: 0.45, Opacity: 1, Density: 1.04, Cost: 0.025, PrintMaterial: "ABS"},
	{Name: "abs_black", BaseColor: Opaque(0.05, 0.05, 0.06), Finish: Satin, Metalness: 0, Roughness: 0.45, Opacity: 1, Density: 1.04, Cost: 0.025, PrintMaterial: "ABS"},
	{Name: "tpu_black", BaseColor: Opaque(0.08, 0.08, 0.08), Finish: Matte, Metalness: 0, Roughness: 0.7, Opacity: 1, Density: 1.21, Cost: 0.04, PrintMaterial: "TPU"},
	{Name: "resin_grey", BaseColor: Opaque(0.6, 0.6, 0.62), Finish: Satin, Metalness: 0, Roughness: 0.3, Opacity: 1, Density: 1.10, Cost: 0.08, PrintMaterial: "resin"},
	{Name: "resin_clear", BaseColor: RGBA{R: 0.93, G: 0.95, B: 0.97, A: 0.2}, Finish: Glossy, Metalness: 0, Roughness: 0.05, Opacity: 0.2, Density: 1.10, Cost: 0.10, PrintMaterial: "resin"},
	{Name: "nylon_natural", BaseColor: Opaque(0.88, 0.86, 0.78), Finish: Satin, Metalness: 0, Roughness: 0.4, Opacity: 1, Density: 1.14, Cost: 0.06, PrintMaterial: "nylon"},
	{Name: "acrylic_clear", BaseColor: RGBA{R: 0.95, G: 0.97, B: 0.98, A: 0.15}, Finish: Glossy, Metalness: 0, Roughness: 0.05, Opacity: 0.15, Density: 1.18, Cost: 1.5, CNCSuitable: true},
	{Name: "polycarbonate_clear", BaseColor: RGBA{R: 0.93, G: 0.96, B: 0.97, A: 0.2}, Finish: Glossy, Metalness: 0, Roughness: 0.08, Opacity: 0.2, Density: 1.20, Cost: 2.0, CNCSuitable: true},
	{Name: "rubber_black", BaseColor: Opaque(0.03, 0.03, 0.03), Finish: Matte, Metalness: 0, Roughness: 0.9, Opacity: 1, Density: 1.10, Cost: 1.0},

	// Woods.
	{Name: "oak", BaseColor: Opaque(0.72, 0.57, 0.37), Finish: Satin, Metalness: 0, Roughness: 0.55, Opacity: 1, Density: 0.75, Cost: 3.0, CNCSuitable: true},
	{Name: "walnut", BaseColor: Opaque(0.32, 0.22, 0.16), Finish: Satin, Metalness: 0, Roughness: 0.55, Opacity: 1, Density: 0.65, Cost: 6.0, CNCSuitable: true},
	{Name: "maple", BaseColor: Opaque(0.86, 0.76, 0.58), Finish: Satin, Metalness: 0, Roughness: 0.5, Opacity: 1, Density: 0.70, Cost: 3.5, CNCSuitable: true},
	{Name: "pine", BaseColor: Opaque(0.89, 0.76, 0.53), Finish: Matte, Metalness: 0, Roughness: 0.65, Opacity: 1, Density: 0.45, Cost: 1.2, CNCSuitable: true},
	{Name: "plywood_birch", BaseColor: Opaque(0.83, 0.71, 0.5), Finish: Matte, Metalness: 0, Roughness: 0.6, Opacity: 1, Density: 0.68, Cost: 1.5, CNCSuitable: true},
	{Name: "mdf", BaseColor: Opaque(0.75, 0.65, 0.47), Finish: Matte, Metalness: 0, Roughness: 0.7, Opacity: 1, Density: 0.75, Cost: 0.8, CNCSuitable: true},
}
