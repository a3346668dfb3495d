package checklist

// Category identifiers.
const (
	CategoryCivil          = "civil_structural"
	CategoryElectrical     = "electrical"
	CategoryFireProtection = "fire_protection"
	CategoryHVAC           = "hvac"
	CategoryPlumbing       = "plumbing"
	CategoryCertificates   = "certificates"
)

func defaultFields() []Field {
	return []Field{
		{ID: FieldUnitName, Label: "Unit Name"},
		{ID: FieldUnitNum, Label: "Unit Number"},
		{ID: FieldTenant, Label: "Tenant/TAR"},
		{ID: FieldSerialNo, Label: "Serial Number"},
		{ID: FieldInspectionDate, Label: "Inspection Date"},
		{ID: FieldEmail, Label: "Email"},
		{ID: FieldDate, Label: "Date", Derived: true},
	}
}

func defaultCategories() []Category {
	return []Category{
		{
			ID:    CategoryCivil,
			Title: "CIVIL & STRUCTURAL",
			Groups: []Group{{Items: []Item{
				{ID: "chk_signage_installation", Label: "Signage installation"},
				{ID: "chk_signage_actual_sample", Label: "Signage actual sample"},
				{ID: "chk_facade_junction_installation", Label: "Facade junction installation"},
				{ID: "chk_floor_water_proofing_facade_line", Label: "Floor water proofing - façade line"},
				{ID: "chk_floor_water_proofing_wat_area_1st_fix", Label: "Floor water proofing - wet area 1st fix @ 60 cm height"},
				{ID: "chk_floor_water_proofing_wat_area_2nd_fix", Label: "Floor water proofing - wet area 2nd fix"},
				{ID: "chk_kitchen_drainage_piping_installation_inspection", Label: "Kitchen drainage piping installation"},
				{ID: "chk_kitchen_tiles_and_grout_installation_inspection", Label: "Kitchen tiles and grout installation"},
				{ID: "chk_releasing_ceiling_closure_inspection", Label: "Releasing ceiling closure inspection"},
				{ID: "chk_flooring_installation_release", Label: "Flooring installation-release"},
				{ID: "chk_rcp_3rd_fix", Label: "RCP - 3rd fix"},
				{ID: "chk_mep_final_inspection", Label: "MEP final inspection"},
				{ID: "chk_ad_shaft_ceiling", Label: "AD - shaft & ceiling"},
				{ID: "chk_facade_isolation", Label: "Façade isolation"},
				{ID: "chk_upstand_isolation", Label: "Upstand isolation"},
			}}},
		},
		{
			ID:    CategoryElectrical,
			Title: "ELECTRICAL SYSTEMS",
			Groups: []Group{
				{ID: "lighting_power", Title: "Lighting & Power", Items: []Item{
					{ID: "chk_electrical_1st_fix", Label: "1st fix"},
					{ID: "chk_electrical_2nd_fix", Label: "2nd fix"},
					{ID: "chk_electrical_3rd_fix", Label: "3rd fix"},
					{ID: "chk_panel_board_installation_termination", Label: "Panel board installation & termination"},
					{ID: "chk_electrical_test_commission", Label: "Test & commission"},
				}},
				{ID: "light_current", Title: "Light Current (Data, Tel, etc.)", Items: []Item{
					{ID: "chk_light_current_1st_fix", Label: "1st fix"},
					{ID: "chk_light_current_2nd_fix", Label: "2nd fix"},
					{ID: "chk_light_current_3rd_fix", Label: "3rd fix"},
				}},
				{ID: "fire_alarm", Title: "Fire Alarm", Items: []Item{
					{ID: "chk_fire_alarm_first_fix", Label: "First fix"},
					{ID: "chk_fire_alarm_second_fix", Label: "Second fix"},
					{ID: "chk_fire_alarm_third_fix", Label: "Third fix"},
					{ID: "chk_fire_alarm_test_commission", Label: "Test & commission"},
					{ID: "chk_interface_with_mall", Label: "Interface with Mall"},
				}},
			},
		},
		{
			ID:    CategoryFireProtection,
			Title: "FIRE PROTECTION SYSTEMS",
			Groups: []Group{{ID: "ff_pipe_work", Title: "Firefighting Pipe Work", Items: []Item{
				{ID: "chk_ff_pipe_work_installation_with_coating", Label: "Installation for F.F pipe work (with coating)"},
				{ID: "chk_ff_pressure_test_16bar_4h", Label: "Pressure test for F.F @16 bar for 4 H"},
				{ID: "chk_ff_drops_installation_for_sprinklers", Label: "Drops installation for sprinklers"},
				{ID: "chk_ff_flushing_network", Label: "Flushing for F.F network"},
				{ID: "chk_ff_sprinkler_installation", Label: "Sprinkler installation"},
				{ID: "chk_ff_connecting_with_mall_tie_in_opening_valve", Label: "Connecting with Mall tie-in & opening valve"},
				{ID: "chk_hood_wet_chemical_system_fnb", Label: "Hood wet chemical system (F&B)"},
				{ID: "chk_fm200_co2_systems_fire_extinguishers_fire_search", Label: "FM200 & CO2 systems, fire extinguishers, etc."},
			}}},
		},
		{
			ID:    CategoryHVAC,
			Title: "HVAC SYSTEMS",
			Groups: []Group{
				{ID: "duct_work", Title: "HVAC Duct Work", Items: []Item{
					{ID: "chk_hvac_duct_installation_dampers_fcu", Label: "Installation for duct work, dampers & FCU"},
					{ID: "chk_hvac_duct_light_smoke_test", Label: "Light or smoke test for duct work"},
					{ID: "chk_hvac_duct_insulation", Label: "Insulation for duct work & VD"},
					{ID: "chk_hvac_duct_installation_3rd_fix", Label: "Installation of 3rd fix for duct work"},
					{ID: "chk_hvac_duct_volume_dumper_grill_diffusers", Label: "Volume dumper, grill, diffusers"},
					{ID: "chk_hvac_duct_air_outlet_installation", Label: "Air outlet installation"},
					{ID: "chk_hvac_duct_test_commission", Label: "Test & commission"},
					{ID: "chk_hvac_duct_test_balance_certificate", Label: "Test & balance certificate"},
				}},
				{ID: "chilled_pipe", Title: "HVAC Chilled Pipe", Items: []Item{
					{ID: "chk_hvac_chilled_pipe_installation_with_coating", Label: "Installation of chilling pipes with coating"},
					{ID: "chk_hvac_chilled_pipe_pressure_test_12bar_4h", Label: "Pressure test for chilled water @12 bar for 4 H"},
					{ID: "chk_hvac_chilled_pipe_installation_for_hook_up", Label: "Installation for hook-up"},
					{ID: "chk_hvac_chilled_pipe_chemical_treatment", Label: "Chemical treatment for chilled water"},
					{ID: "chk_hvac_chilled_pipe_insulation_all_pipes_hook_up", Label: "Insulation for all pipes & hook-up"},
					{ID: "chk_hvac_chilled_pipe_connecting_with_mall_tie_in_opening_valve", Label: "Connecting with Mall tie-in & opening valve"},
				}},
			},
		},
		{
			ID:    CategoryPlumbing,
			Title: "PLUMBING SYSTEMS",
			Groups: []Group{{Items: []Item{
				{ID: "chk_plumbing_drainage_pipes_installation", Label: "Installation of drainage pipes"},
				{ID: "chk_plumbing_drainage_pipes_water_test", Label: "Water test for drainage pipes"},
				{ID: "chk_plumbing_network_protection_before_after_civil_work", Label: "Network protection before & after civil work"},
				{ID: "chk_plumbing_3rd_fix_valves_fixtures", Label: "3rd fix (valves & plumbing fixtures)"},
				{ID: "chk_plumbing_ac_drainpipes_installation", Label: "Installation of A.C drainpipes"},
				{ID: "chk_plumbing_ac_drainpipes_water_test_16bar_4h", Label: "Water test for A.C drainpipes 16 bar for 4H"},
				{ID: "chk_plumbing_water_supply_pipes_installation", Label: "Installation of water supply pipes"},
				{ID: "chk_plumbing_water_supply_pipes_pressure_test_16bar_4h", Label: "Pressure test for water supply pipes 16 bar for 4H"},
				{ID: "chk_plumbing_drainage_pipes_re_installation", Label: "Installation for drainage pipes (re-test)"},
				{ID: "chk_plumbing_drainage_pipes_re_water_test", Label: "Water test for drainage pipes (re-test)"},
				{ID: "chk_plumbing_flush_tank_toilets_only_installation", Label: "Installation for flush tank - toilets only"},
				{ID: "chk_plumbing_ewh_installation", Label: "Installation for EWH"},
			}}},
		},
		{
			ID:    CategoryCertificates,
			Title: "CERTIFICATES REQUIRED",
			Groups: []Group{{Items: []Item{
				{ID: "chk_certificate_chemical_treatment_flushing_chilled_water", Label: "Chemical treatment flushing for chilled water"},
				{ID: "chk_certificate_test_balance_report_hvac_air_water", Label: "Test & balance report for HVAC system (air & water)"},
				{ID: "chk_certificate_panel_board_test", Label: "Panel board test certificate"},
				{ID: "chk_certificate_fire_alarm", Label: "Fire alarm certificate"},
				{ID: "chk_certificate_plumbing_pipes", Label: "Plumbing pipes certificate"},
				{ID: "chk_certificate_hood_fire_suppression_system_mep_testing_sign_off_energization_commissioning", Label: "Hood fire suppression system MEP testing sign-off"},
			}}},
		},
	}
}

// Default returns the registry of the inspection request form.
func Default() *Registry {
	r, err := New(defaultFields(), defaultCategories())
	if err != nil {
		// The built-in tables are static.
		panic(err)
	}
	return r
}
