package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/geom"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

type Preset struct {
	Name        string
	Description string
	Points      [][3]float64
}

// Positions returns a fresh copy of the preset's coordinates.
func (p Preset) Positions() chain.Positions {
	return chain.FromPoints(p.Points)
}

func (p Preset) Count() int { return len(p.Points) }

// zigzag lays out the default open chain: slightly compressed along X with
// every odd element raised, so the first settle folds it into contact.
func zigzag(n int) [][3]float64 {
	pts := make([][3]float64, n)
	for i := range pts {
		pts[i][0] = float64(i) * chain.Diameter * 0.9
		if i%2 == 1 {
			pts[i][1] = 0.8
		}
	}
	return pts
}

var Presets = map[string]Preset{
	"default11": {
		Name:        "default11",
		Description: "straight zig-zag chain of 11",
		Points:      zigzag(11),
	},
	"trefoil11": {
		Name:        "trefoil11",
		Description: "locked trefoil, 11 elements",
		Points: [][3]float64{
			{-2.624869700268529, 0.10583593512340614, 3.0685696239990623},
			{-2.681541021227203, 2.0113771784890173, 2.384005550711061},
			{-4.3182595004243876, 3.125598752772765, 2.7156935627616012},
			{-5.116011465248746, 2.599399111040094, 4.486316589560745},
			{-3.986438889459273, 1.1462324784140954, 5.297948652265001},
			{-2.0571764758822026, 1.0069193356462496, 4.758856713339242},
			{-0.977088770577106, 1.2367784687108556, 3.082989674076888},
			{-1.7441690856967325, 0.5967865292042323, 1.3380731990993546},
			{-3.751852008707902, 0.5862477068631713, 1.478777172267485},
			{-4.267208807434025, 1.2128743102696067, 3.3151472114253377},
			{-3.1300141964206545, 2.612017699403403, 4.236670474479993},
		},
	},
	"figure8_16": {
		Name:        "figure8_16",
		Description: "locked figure-eight, 16 elements",
		Points: [][3]float64{
			{-3.0740013184844064, 4.3977094138865, 3.284062510710861},
			{-3.5570131947089814, 4.47676548625323, 1.3448746227412705},
			{-2.904974233802344, 3.166829725579017, -0.018545157211574355},
			{-1.229381256944175, 2.5439983767930423, -0.9154672758333771},
			{-0.26566906780440247, 3.3666118945120216, 0.6319711936927732},
			{-0.3406579922837306, 4.168031366638994, 2.4628462552142194},
			{-0.31399083504463016, 5.98270893595293, 3.303223659809113},
			{-1.0174869043900694, 7.480189276118194, 2.1795484793258733},
			{-1.860632559491898, 6.73425525664919, 0.5264641369882769},
			{-1.719565550516834, 4.7393540736108015, 0.5481290600407955},
			{-2.021917711248147, 3.2098646804811617, 1.8008243011928617},
			{-3.882490025759295, 2.7863217053549096, 2.39989191899225},
			{-5.005244468408313, 4.409152965062662, 2.725224309060073},
			{-3.932942682417033, 6.094913308183174, 2.6336768059694537},
			{-2.001077200846353, 5.740468311878083, 2.2564971329885637},
			{-0.24369450718480085, 5.854574488135534, 1.3085594511978393},
		},
	},
	"double_overhand_18": {
		Name:        "double_overhand_18",
		Description: "double overhand, 18 elements",
		Points: [][3]float64{
			{10.022332844404508, -0.6354988943486187, -1.4406447454161866},
			{9.921664667723563, -1.8642921823864067, 0.13413554830005636},
			{9.683493057511434, -1.3107783560299258, 2.0412004995067976},
			{10.89502642743928, 0.1044822253346981, 2.7686785956627884},
			{12.516515405952285, 0.27080969550342393, 1.6097529443684002},
			{13.503532275146377, -1.2409797783108711, 0.7493517084379786},
			{13.677288013757199, -1.8208089130090568, -1.156850567779044},
			{11.955659022561044, -2.362344336733756, -2.018670155351882},
			{9.993364628582334, -2.614824962854049, -1.72600269082321},
			{8.349186841897078, -1.6724797809191116, -1.0867336051833805},
			{8.861322978071344, -0.159397897568845, 0.11671967280530193},
			{10.743855170775591, -0.16394807984565524, 0.7920357760291098},
			{11.686511112706137, -1.522739040937635, 1.9167965946913574},
			{13.454540471212283, -1.084451342673796, 2.7426150257105095},
			{14.515236372781182, 0.22268921756379206, 1.662657730176694},
			{13.568982231374273, 0.5861307658446917, -0.06144010372179506},
			{12.108779408761912, -0.6026485198133851, -0.7356889649185835},
			{11.877027466846014, -2.392577723469843, 0.12596321741252972},
		},
	},
	"stevedore_22": {
		Name:        "stevedore_22",
		Description: "stevedore knot, 22 elements",
		Points: [][3]float64{
			{2.051526775491922, -7.559539456367731, -4.479407650260486},
			{1.7195673695804812, -5.585198302807112, -4.725032689935812},
			{1.335744059077316, -3.622105938156657, -4.515820555322602},
			{2.2010208634331105, -1.8182226359217275, -4.578633366235576},
			{2.423177051966843, -0.7831505022326322, -2.869356963579922},
			{2.48870467597945, -2.0773948601517427, -1.3298504891373593},
			{2.3062178082465974, -3.944883288091524, -2.0490164890778124},
			{3.065784711648732, -4.379998787796813, -3.865974596240686},
			{2.703898454730253, -4.24775740717042, -5.831491554835402},
			{0.7509908658401141, -4.595832171341833, -6.159165072940935},
			{-0.14696721506766652, -4.957000977838699, -4.397031458628063},
			{1.0902843456518383, -5.297617537650165, -2.8549991452118704},
			{2.836545609824805, -6.243381986154819, -3.2027627758070594},
			{3.5318163968919047, -6.356581504218745, -5.083137678379871},
			{1.9977440622975429, -6.7638449136005985, -6.318246079616762},
			{0.3117439175980464, -6.912236050422085, -5.231988254510501},
			{0.52009175207975, -7.174434772222447, -3.2525147513767054},
			{1.681746504332668, -6.7930216304773285, -1.662468078552357},
			{3.2408790933545872, -5.566384092741671, -1.3647779319057747},
			{4.282290058745082, -4.1233604688796754, -2.2936769982246448},
			{3.3171912150166887, -2.5547145629199663, -3.088072116182919},
			{1.304442660628876, -2.4405498783532478, -2.9054203342120486},
		},
	},
	"knot_9_29": {
		Name:        "knot_9_29",
		Description: "compact 9-element seed for the 9_29 knot",
		Points: [][3]float64{
			{-0.01705188882962603, -0.8472070769441673, 0.5309890788547935},
			{0.041386237542474724, 0.04265321980605685, 0.07851406556265417},
			{-0.006817402438744069, -0.9406813617024611, 0.25381241096850504},
			{-0.028582515259995032, -0.09019744875337588, 0.7793629734063082},
			{0.06629662310464379, -0.06256778735228902, -0.21574232298902563},
			{0.06914020976103849, -0.24079725362023752, 0.7682425200694282},
			{-0.3617541314019883, -0.7692376495316422, 0.03675033643198222},
			{0.29177162736175377, -0.5711160126667256, 0.7672651546514633},
			{0, 0, 0},
		},
	},
}

// GetPreset looks up a preset by name. Unknown names return ErrUnknownPreset.
func GetPreset(name string) (Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the axis-aligned bounding box of a preset.
func (p Preset) Bounds() (lo, hi geom.Vec3) {
	if len(p.Points) == 0 {
		return lo, hi
	}
	lo, hi = geom.Vec3(p.Points[0]), geom.Vec3(p.Points[0])
	for _, v := range p.Points[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < lo[k] {
				lo[k] = v[k]
			}
			if v[k] > hi[k] {
				hi[k] = v[k]
			}
		}
	}
	return lo, hi
}
